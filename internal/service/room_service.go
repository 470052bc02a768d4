package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CaseyLotteBenett/textroleplay/internal/audit"
	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/repository"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room name already exists")
)

type roomServiceImpl struct {
	repo repository.RoomRepository
}

// NewRoomService creates the chat room directory service.
func NewRoomService(repo repository.RoomRepository) RoomService {
	return &roomServiceImpl{repo: repo}
}

// EnsureDefaultRooms looks up each well-known room by name and creates
// it if absent. Not transactional: concurrent startups could race, which
// is acceptable because seeding runs once per process lifetime.
func (s *roomServiceImpl) EnsureDefaultRooms(ctx context.Context) error {
	for _, seed := range domain.DefaultRooms {
		_, err := s.repo.GetByName(ctx, seed.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrRoomNotFound) {
			return fmt.Errorf("seed room %q: %w", seed.Name, err)
		}

		room := &domain.ChatRoom{
			Name:        seed.Name,
			Description: seed.Description,
			IsPublic:    seed.IsPublic,
		}
		if err := s.repo.Create(ctx, room); err != nil {
			// Lost a seeding race; the room exists now, which is all we need.
			if errors.Is(err, repository.ErrRoomExists) {
				continue
			}
			return fmt.Errorf("seed room %q: %w", seed.Name, err)
		}

		audit.LogWithDetail(ctx, audit.ActionSeedRoom, "system", seed.Name, "seeded chat room")
		log.Ctx(ctx).Info().Str(log.FieldRoomID, room.ID).Str("room_name", room.Name).Msg("chat room seeded")
	}
	return nil
}

// CreateRoom creates a room after a name-uniqueness check. The check and
// the insert are not atomic; the unique index backstops the race.
func (s *roomServiceImpl) CreateRoom(ctx context.Context, name, description string, isPublic bool) (*domain.ChatRoom, error) {
	_, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return nil, ErrRoomExists
	}
	if !errors.Is(err, repository.ErrRoomNotFound) {
		return nil, err
	}

	room := &domain.ChatRoom{
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrRoomExists) {
			return nil, ErrRoomExists
		}
		return nil, err
	}
	return room, nil
}

func (s *roomServiceImpl) GetRoom(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	room, err := s.repo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *roomServiceImpl) GetRoomByName(ctx context.Context, name string) (*domain.ChatRoom, error) {
	room, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *roomServiceImpl) ListRooms(ctx context.Context) ([]domain.ChatRoom, error) {
	return s.repo.List(ctx)
}
