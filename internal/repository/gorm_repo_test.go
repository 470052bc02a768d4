package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.ChatRoomModel{}, &domain.MessageModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createRoom(t *testing.T, repo *GormRoomRepository, name string) *domain.ChatRoom {
	t.Helper()
	room := &domain.ChatRoom{Name: name, IsPublic: true}
	if err := repo.Create(context.Background(), room); err != nil {
		t.Fatalf("create room %q: %v", name, err)
	}
	return room
}

func TestRoomCreateAssignsID(t *testing.T) {
	repo := NewGormRoomRepository(newTestDB(t))

	room := createRoom(t, repo, "The Hearth")
	if room.ID == "" {
		t.Fatal("create must assign an id")
	}

	got, err := repo.GetByID(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Name != "The Hearth" {
		t.Errorf("unexpected room name %q", got.Name)
	}
}

func TestRoomCreateDuplicateName(t *testing.T) {
	repo := NewGormRoomRepository(newTestDB(t))

	createRoom(t, repo, "The Hearth")
	err := repo.Create(context.Background(), &domain.ChatRoom{Name: "The Hearth"})
	if !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestRoomGetByIDNotFound(t *testing.T) {
	repo := NewGormRoomRepository(newTestDB(t))
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomList(t *testing.T) {
	repo := NewGormRoomRepository(newTestDB(t))

	createRoom(t, repo, "The Hearth")
	createRoom(t, repo, "The Crossroads")

	rooms, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
}

func seedMessages(t *testing.T, repo *GormMessageRepository, roomID string, count int) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		msg := &domain.Message{
			RoomID:      roomID,
			CharacterID: "char-1",
			Content:     fmt.Sprintf("message %d", i+1),
		}
		if err := repo.Create(context.Background(), msg); err != nil {
			t.Fatalf("create message: %v", err)
		}
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestMessageCreateAssignsMonotonicIDs(t *testing.T) {
	db := newTestDB(t)
	rooms := NewGormRoomRepository(db)
	messages := NewGormMessageRepository(db)
	room := createRoom(t, rooms, "The Hearth")

	ids := seedMessages(t, messages, room.ID, 5)
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not strictly increasing: %v", ids)
		}
	}
}

func TestMessageCreateRejectsInvalidContent(t *testing.T) {
	db := newTestDB(t)
	messages := NewGormMessageRepository(db)

	err := messages.Create(context.Background(), &domain.Message{
		RoomID:      "room-1",
		CharacterID: "char-1",
		Content:     "   ",
	})
	if !errors.Is(err, domain.ErrContentEmpty) {
		t.Fatalf("expected ErrContentEmpty, got %v", err)
	}
}

func TestMessageListByRoomPagination(t *testing.T) {
	db := newTestDB(t)
	rooms := NewGormRoomRepository(db)
	messages := NewGormMessageRepository(db)
	room := createRoom(t, rooms, "The Hearth")
	other := createRoom(t, rooms, "The Crossroads")

	seedMessages(t, messages, room.ID, 7)
	seedMessages(t, messages, other.ID, 2)

	page, err := messages.ListByRoom(context.Background(), room.ID, 3, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(page))
	}
	if page[0].Content != "message 7" {
		t.Errorf("expected newest message first, got %q", page[0].Content)
	}
	for i := 1; i < len(page); i++ {
		if page[i-1].ID <= page[i].ID {
			t.Errorf("page not in descending id order")
		}
	}

	next, err := messages.ListByRoom(context.Background(), room.ID, 3, 3)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(next) != 3 || next[0].Content != "message 4" {
		t.Errorf("unexpected second page: %+v", next)
	}

	// Offset past the end yields an empty page, not an error.
	empty, err := messages.ListByRoom(context.Background(), room.ID, 3, 100)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %d", len(empty))
	}
}

func TestMessageListScopedToRoom(t *testing.T) {
	db := newTestDB(t)
	rooms := NewGormRoomRepository(db)
	messages := NewGormMessageRepository(db)
	room := createRoom(t, rooms, "The Hearth")
	other := createRoom(t, rooms, "The Crossroads")

	seedMessages(t, messages, room.ID, 3)
	seedMessages(t, messages, other.ID, 2)

	page, err := messages.ListByRoom(context.Background(), other.ID, 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 messages for the other room, got %d", len(page))
	}
	for _, m := range page {
		if m.RoomID != other.ID {
			t.Errorf("message %d leaked from room %s", m.ID, m.RoomID)
		}
	}
}

func TestMessageArchiveMarksAndKeepsVisible(t *testing.T) {
	db := newTestDB(t)
	rooms := NewGormRoomRepository(db)
	messages := NewGormMessageRepository(db)
	room := createRoom(t, rooms, "The Hearth")

	seedMessages(t, messages, room.ID, 3)

	count, err := messages.Archive(context.Background(), room.ID, nil)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 archived, got %d", count)
	}

	page, err := messages.ListByRoom(context.Background(), room.ID, 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("archived messages must stay readable, got %d", len(page))
	}
	for _, m := range page {
		if m.ArchivedAt == nil {
			t.Errorf("message %d missing archival marker", m.ID)
		}
	}

	// Already-marked rows are not re-stamped.
	again, err := messages.Archive(context.Background(), room.ID, nil)
	if err != nil {
		t.Fatalf("second archive: %v", err)
	}
	if again != 0 {
		t.Errorf("expected 0 newly archived, got %d", again)
	}
}

func TestMessageArchiveBeforeCutoff(t *testing.T) {
	db := newTestDB(t)
	rooms := NewGormRoomRepository(db)
	messages := NewGormMessageRepository(db)
	room := createRoom(t, rooms, "The Hearth")

	ids := seedMessages(t, messages, room.ID, 2)

	// Backdate the first message behind the cutoff.
	cutoff := time.Now().Add(-time.Hour)
	backdated := cutoff.Add(-time.Minute)
	if err := db.Model(&domain.MessageModel{}).Where("id = ?", ids[0]).
		Update("created_at", backdated).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	count, err := messages.Archive(context.Background(), room.ID, &cutoff)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 archived before cutoff, got %d", count)
	}

	page, err := messages.ListByRoom(context.Background(), room.ID, 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, m := range page {
		if m.ID == ids[1] && m.ArchivedAt != nil {
			t.Error("message after the cutoff must not be marked")
		}
	}
}
