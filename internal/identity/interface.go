package identity

import (
	"context"
	"errors"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
)

var ErrCharacterNotFound = errors.New("character not found")

// CharacterProvider reads character profiles owned by the main
// application. Used to verify character ownership at authenticate time
// and to denormalize names into broadcast envelopes and exports.
type CharacterProvider interface {
	GetCharacter(ctx context.Context, characterID string) (*domain.Character, error)
}
