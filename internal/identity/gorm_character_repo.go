package identity

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
)

// GormCharacterProvider implements CharacterProvider against the main
// application's characters table. Read-only by contract.
type GormCharacterProvider struct {
	db *gorm.DB
}

// NewGormCharacterProvider creates a new GORM-based character provider.
func NewGormCharacterProvider(db *gorm.DB) *GormCharacterProvider {
	return &GormCharacterProvider{db: db}
}

// GetCharacter retrieves a character by ID.
func (p *GormCharacterProvider) GetCharacter(ctx context.Context, characterID string) (*domain.Character, error) {
	var model domain.CharacterModel
	result := p.db.WithContext(ctx).First(&model, "id = ?", characterID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldCharacterID, characterID).Msg("failed to get character")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}
