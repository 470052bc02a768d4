package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
)

// GormRoomRepository implements RoomRepository using GORM.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GORM-based room repository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// Create creates a new chat room. Name uniqueness is enforced by the
// unique index; callers are expected to look up by name first (seeding
// is check-then-create).
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	l := log.Ctx(ctx)

	room.ID = uuid.New().String()

	model := domain.ChatRoomToModel(room)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(result.Error) {
			return ErrRoomExists
		}
		l.Error().Err(result.Error).Str("room_name", room.Name).Msg("failed to create chat room in db")
		return result.Error
	}

	room.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldRoomID, room.ID).Str("room_name", room.Name).Msg("chat room created in db")
	return nil
}

// GetByID retrieves a chat room by ID.
func (r *GormRoomRepository) GetByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	var model domain.ChatRoomModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldRoomID, id).Msg("failed to get chat room by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByName retrieves a chat room by its unique name.
func (r *GormRoomRepository) GetByName(ctx context.Context, name string) (*domain.ChatRoom, error) {
	var model domain.ChatRoomModel
	result := r.db.WithContext(ctx).First(&model, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		log.Ctx(ctx).Error().Err(result.Error).Str("room_name", name).Msg("failed to get chat room by name")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns all chat rooms, oldest first.
func (r *GormRoomRepository) List(ctx context.Context) ([]domain.ChatRoom, error) {
	var models []domain.ChatRoomModel
	result := r.db.WithContext(ctx).Order("created_at ASC").Find(&models)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to list chat rooms from db")
		return nil, result.Error
	}

	rooms := make([]domain.ChatRoom, len(models))
	for i, model := range models {
		rooms[i] = *model.ToDomain()
	}
	return rooms, nil
}

// isUniqueViolation catches driver-specific unique constraint errors that
// gorm does not translate on every dialect.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
