package repository

import (
	"context"
	"errors"
	"time"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("chat room not found")
	ErrRoomExists   = errors.New("chat room name already exists")
)

// RoomRepository defines the interface for the chat room directory.
// Rooms are created once (seeded) and never deleted.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.ChatRoom) error
	GetByID(ctx context.Context, id string) (*domain.ChatRoom, error)
	GetByName(ctx context.Context, name string) (*domain.ChatRoom, error)
	List(ctx context.Context) ([]domain.ChatRoom, error)
}

// MessageRepository defines the interface for the persisted message log.
type MessageRepository interface {
	// Create validates and appends msg to the room's log, assigning the
	// monotonic id and creation timestamp. The store is never mutated on
	// validation failure.
	Create(ctx context.Context, msg *domain.Message) error

	// ListByRoom returns messages newest-first (descending id), skipping
	// offset and returning at most limit. An offset past the end yields an
	// empty slice, not an error.
	ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]domain.Message, error)

	// Archive marks all unarchived messages in the room created strictly
	// before the cutoff (all of them when before is nil). Archived rows stay
	// readable; this is a soft marker, not a deletion.
	Archive(ctx context.Context, roomID string, before *time.Time) (int64, error)
}
