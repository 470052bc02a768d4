package cache

import (
	"context"
	"time"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
)

// HistoryPage is one cached page of room history.
type HistoryPage struct {
	Messages []domain.Message `json:"messages"`
}

// HistoryCache caches paginated history reads keyed by room and page.
type HistoryCache interface {
	Get(ctx context.Context, key string) (*HistoryPage, error)
	Set(ctx context.Context, key string, page *HistoryPage, ttl time.Duration) error
	BuildKey(roomID string, limit, offset int) string
	Close() error
}
