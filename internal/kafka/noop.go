package kafka

import (
	"context"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
)

// NoopProducer is used when the archive stream is disabled.
type NoopProducer struct{}

func NewNoopProducer() *NoopProducer {
	return &NoopProducer{}
}

func (p *NoopProducer) ProduceMessage(ctx context.Context, msg *domain.Message) error {
	return nil
}

func (p *NoopProducer) Close() error {
	return nil
}
