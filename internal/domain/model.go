package domain

import (
	"time"
)

// ChatRoomModel is the GORM model for the chat_rooms table.
type ChatRoomModel struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	IsPublic    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ChatRoomModel.
func (ChatRoomModel) TableName() string {
	return "chat_rooms"
}

// ToDomain converts ChatRoomModel to domain ChatRoom.
func (m *ChatRoomModel) ToDomain() *ChatRoom {
	return &ChatRoom{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		IsPublic:    m.IsPublic,
		CreatedAt:   m.CreatedAt,
	}
}

// ChatRoomToModel converts domain ChatRoom to ChatRoomModel.
func ChatRoomToModel(r *ChatRoom) *ChatRoomModel {
	return &ChatRoomModel{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsPublic:    r.IsPublic,
		CreatedAt:   r.CreatedAt,
	}
}

// MessageModel is the GORM model for the chat_messages table.
// The autoincrement primary key doubles as the monotonic message id
// receivers use to reconstruct a total order.
type MessageModel struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	RoomID      string    `gorm:"type:varchar(36);index;not null"`
	CharacterID string    `gorm:"type:varchar(36);index;not null"`
	Content     string    `gorm:"type:text;not null"`
	MessageType string    `gorm:"type:varchar(30);not null;default:'text'"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	ArchivedAt  *time.Time
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:          m.ID,
		RoomID:      m.RoomID,
		CharacterID: m.CharacterID,
		Content:     m.Content,
		MessageType: m.MessageType,
		CreatedAt:   m.CreatedAt,
		ArchivedAt:  m.ArchivedAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:          msg.ID,
		RoomID:      msg.RoomID,
		CharacterID: msg.CharacterID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
		CreatedAt:   msg.CreatedAt,
		ArchivedAt:  msg.ArchivedAt,
	}
}

// CharacterModel is a read-only mapping of the main application's
// characters table. The chat service never writes to it.
type CharacterModel struct {
	ID         string `gorm:"type:varchar(36);primaryKey"`
	UserID     string `gorm:"type:varchar(36);index;not null"`
	FirstName  string `gorm:"type:varchar(60);not null"`
	MiddleName string `gorm:"type:varchar(60)"`
	LastName   string `gorm:"type:varchar(60)"`
}

// TableName specifies the table name for CharacterModel.
func (CharacterModel) TableName() string {
	return "characters"
}

// ToDomain converts CharacterModel to domain Character.
func (m *CharacterModel) ToDomain() *Character {
	return &Character{
		ID:         m.ID,
		UserID:     m.UserID,
		FirstName:  m.FirstName,
		MiddleName: m.MiddleName,
		LastName:   m.LastName,
	}
}
