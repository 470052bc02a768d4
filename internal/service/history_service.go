package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/CaseyLotteBenett/textroleplay/internal/audit"
	"github.com/CaseyLotteBenett/textroleplay/internal/cache"
	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/identity"
	"github.com/CaseyLotteBenett/textroleplay/internal/repository"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
	"github.com/CaseyLotteBenett/textroleplay/pkg/storage"
)

const (
	// DefaultLimit applies when the caller omits or mangles the page size.
	DefaultLimit = 50
	// MaxLimit caps a single history page.
	MaxLimit = 100
	// ExportLimit bounds one export snapshot.
	ExportLimit = 1000
)

const unknownCharacterName = "Unknown Character"

type historyServiceImpl struct {
	messages   repository.MessageRepository
	rooms      repository.RoomRepository
	characters identity.CharacterProvider
	cache      cache.HistoryCache // nil when caching is disabled
	cacheTTL   time.Duration
	archives   storage.Storage // nil when snapshot storage is disabled
	sf         singleflight.Group
}

// NewHistoryService creates the history/export service. cache and
// archives may be nil; the service then skips page caching and snapshot
// writes respectively.
func NewHistoryService(
	messages repository.MessageRepository,
	rooms repository.RoomRepository,
	characters identity.CharacterProvider,
	historyCache cache.HistoryCache,
	cacheTTL time.Duration,
	archives storage.Storage,
) HistoryService {
	return &historyServiceImpl{
		messages:   messages,
		rooms:      rooms,
		characters: characters,
		cache:      historyCache,
		cacheTTL:   cacheTTL,
		archives:   archives,
	}
}

// GetHistory returns one page of room history, newest first. Invalid
// limit/offset values fall back to defaults rather than erroring.
func (s *historyServiceImpl) GetHistory(ctx context.Context, roomID string, limit, offset int) (*domain.HistoryResponse, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	// The live first page changes on every new message; always read it
	// straight from the store.
	if s.cache == nil || offset == 0 {
		messages, err := s.messages.ListByRoom(ctx, roomID, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to read room history: %w", err)
		}
		return &domain.HistoryResponse{Messages: messages, Limit: limit, Offset: offset}, nil
	}

	cacheKey := s.cache.BuildKey(roomID, limit, offset)

	// Collapse concurrent identical reads onto one store round trip.
	result, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		return s.fetchWithCache(ctx, roomID, limit, offset, cacheKey)
	})
	if err != nil {
		return nil, err
	}

	page, ok := result.(*cache.HistoryPage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}

	return &domain.HistoryResponse{Messages: page.Messages, Limit: limit, Offset: offset}, nil
}

func (s *historyServiceImpl) fetchWithCache(ctx context.Context, roomID string, limit, offset int, cacheKey string) (*cache.HistoryPage, error) {
	cached, err := s.cache.Get(ctx, cacheKey)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Ctx(ctx).Warn().Err(err).Msg("history cache get error")
	}

	messages, err := s.messages.ListByRoom(ctx, roomID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read room history: %w", err)
	}

	page := &cache.HistoryPage{Messages: messages}

	// Store async so a slow cache never delays the response.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(cacheCtx, cacheKey, page, s.cacheTTL); err != nil {
			log.L().Warn().Err(err).Msg("history cache set error")
		}
	}()

	return page, nil
}

// ExportRoom projects up to ExportLimit newest messages into the flat
// export shape, newest first. A single snapshot, not a paginated read.
func (s *historyServiceImpl) ExportRoom(ctx context.Context, roomID string) (*domain.ExportResponse, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	messages, err := s.messages.ListByRoom(ctx, roomID, ExportLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read room for export: %w", err)
	}

	names := make(map[string]string)
	entries := make([]domain.ExportEntry, len(messages))
	for i, msg := range messages {
		name, ok := names[msg.CharacterID]
		if !ok {
			name = s.characterName(ctx, msg.CharacterID)
			names[msg.CharacterID] = name
		}
		entries[i] = domain.ExportEntry{
			Timestamp: msg.CreatedAt,
			Character: name,
			Message:   msg.Content,
			Type:      msg.MessageType,
		}
	}

	audit.LogWithDetail(ctx, audit.ActionExportRoom, actorFromContext(ctx), roomID, "room exported")

	return &domain.ExportResponse{
		RoomID:     roomID,
		ExportedAt: time.Now().UTC(),
		Entries:    entries,
	}, nil
}

// ArchiveRoom stamps the archival marker on messages created before the
// cutoff (the whole room when nil) and writes an export snapshot to the
// archive storage backend. The markers are committed first; a snapshot
// write failure is logged and does not undo them.
func (s *historyServiceImpl) ArchiveRoom(ctx context.Context, roomID string, before *time.Time) (*domain.ArchiveResponse, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	count, err := s.messages.Archive(ctx, roomID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to archive room: %w", err)
	}

	audit.LogWithDetail(ctx, audit.ActionArchiveRoom, actorFromContext(ctx), roomID, "room archived")

	if s.archives != nil {
		if err := s.writeSnapshot(ctx, roomID); err != nil {
			log.Ctx(ctx).Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to write archive snapshot")
		}
	}

	return &domain.ArchiveResponse{
		RoomID:   roomID,
		Archived: count,
		Before:   before,
	}, nil
}

func (s *historyServiceImpl) writeSnapshot(ctx context.Context, roomID string) error {
	export, err := s.ExportRoom(ctx, roomID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("rooms/%s/%s.json", roomID, export.ExportedAt.Format("2006-01-02T15-04-05Z"))
	if err := s.archives.Write(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	log.Ctx(ctx).Info().Str(log.FieldRoomID, roomID).Str("snapshot_key", key).Msg("archive snapshot written")
	return nil
}

func (s *historyServiceImpl) characterName(ctx context.Context, characterID string) string {
	character, err := s.characters.GetCharacter(ctx, characterID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldCharacterID, characterID).Msg("character lookup failed during export")
		return unknownCharacterName
	}
	return character.FullName()
}

// actorFromContext resolves the acting user for audit entries; HTTP
// handlers put the authenticated user id on the context logger only, so
// fall back to "system" when absent.
func actorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "system"
}

type actorKey struct{}

// WithActor tags the context with the acting user id for audit entries.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}
