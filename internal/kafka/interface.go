package kafka

import (
	"context"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
)

// ArchiveProducer mirrors persisted messages onto the archive topic for
// offline consumers. Best-effort: the chat path never depends on it.
type ArchiveProducer interface {
	ProduceMessage(ctx context.Context, msg *domain.Message) error
	Close() error
}
