package service

import (
	"context"
	"time"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/hub"
)

// ChatService handles inbound websocket events for one connection:
// authentication, room membership, and message dispatch.
type ChatService interface {
	HandleAuthenticate(ctx context.Context, client *hub.Client, token, characterID string) error
	HandleJoinRoom(ctx context.Context, client *hub.Client, roomID string) error
	HandleLeaveRoom(ctx context.Context, client *hub.Client, roomID string) error
	HandleChatMessage(ctx context.Context, client *hub.Client, event *domain.ChatMessageEvent) error
	Stop() error
}

// RoomService is the chat room directory.
type RoomService interface {
	// EnsureDefaultRooms seeds the well-known rooms at startup:
	// look up by name, create if absent. Idempotent per process lifetime.
	EnsureDefaultRooms(ctx context.Context) error
	CreateRoom(ctx context.Context, name, description string, isPublic bool) (*domain.ChatRoom, error)
	GetRoom(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	GetRoomByName(ctx context.Context, name string) (*domain.ChatRoom, error)
	ListRooms(ctx context.Context) ([]domain.ChatRoom, error)
}

// HistoryService serves paginated history reads, export snapshots and
// the archival pipeline.
type HistoryService interface {
	GetHistory(ctx context.Context, roomID string, limit, offset int) (*domain.HistoryResponse, error)
	ExportRoom(ctx context.Context, roomID string) (*domain.ExportResponse, error)
	ArchiveRoom(ctx context.Context, roomID string, before *time.Time) (*domain.ArchiveResponse, error)
}
