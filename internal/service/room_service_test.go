package service

import (
	"context"
	"errors"
	"testing"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
)

func TestEnsureDefaultRoomsSeedsAll(t *testing.T) {
	repo := newFakeRoomRepo()
	svc := NewRoomService(repo)

	if err := svc.EnsureDefaultRooms(context.Background()); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	for _, seed := range domain.DefaultRooms {
		room, err := svc.GetRoomByName(context.Background(), seed.Name)
		if err != nil {
			t.Fatalf("seeded room %q not found: %v", seed.Name, err)
		}
		if room.ID == "" {
			t.Errorf("room %q has no id", seed.Name)
		}
	}
}

func TestEnsureDefaultRoomsIsIdempotent(t *testing.T) {
	repo := newFakeRoomRepo()
	svc := NewRoomService(repo)

	for i := 0; i < 2; i++ {
		if err := svc.EnsureDefaultRooms(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	rooms, err := svc.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != len(domain.DefaultRooms) {
		t.Errorf("expected %d rooms after two seed runs, got %d", len(domain.DefaultRooms), len(rooms))
	}
}

func TestCreateRoomRejectsDuplicateName(t *testing.T) {
	repo := newFakeRoomRepo()
	svc := NewRoomService(repo)

	if _, err := svc.CreateRoom(context.Background(), "The Vault", "", true); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateRoom(context.Background(), "The Vault", "", true); !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	svc := NewRoomService(newFakeRoomRepo())
	if _, err := svc.GetRoom(context.Background(), "nowhere"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}
