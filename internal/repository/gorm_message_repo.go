package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create validates and appends the message to the room's log. The
// autoincrement primary key provides the monotonic id; CreatedAt is
// assigned at persistence time.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	l := log.Ctx(ctx)

	content, err := domain.ValidateContent(msg.Content)
	if err != nil {
		return err
	}
	msg.Content = content
	msg.MessageType = domain.NormalizeMessageType(msg.MessageType)

	model := domain.MessageToModel(msg)
	model.ID = 0 // id assignment belongs to the store
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, msg.RoomID).Msg("failed to persist chat message")
		return result.Error
	}

	msg.ID = model.ID
	msg.CreatedAt = model.CreatedAt
	return nil
}

// ListByRoom returns messages for the room in descending id order.
func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]domain.Message, error) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldRoomID, roomID).Msg("failed to list messages from db")
		return nil, result.Error
	}

	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}
	return messages, nil
}

// Archive stamps archived_at on unarchived messages in the room created
// strictly before the cutoff; a nil cutoff archives the whole room.
// Rows already carrying a marker keep their original timestamp.
func (r *GormMessageRepository) Archive(ctx context.Context, roomID string, before *time.Time) (int64, error) {
	l := log.Ctx(ctx)

	now := time.Now()
	query := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("room_id = ? AND archived_at IS NULL", roomID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	result := query.Update("archived_at", now)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, roomID).Msg("failed to archive messages in db")
		return 0, result.Error
	}

	l.Debug().Str(log.FieldRoomID, roomID).Int64("archived", result.RowsAffected).Msg("messages archived in db")
	return result.RowsAffected, nil
}
