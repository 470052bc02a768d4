package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength is the maximum message length in characters after
// trimming surrounding whitespace.
const MaxContentLength = 5000

// DefaultMessageType tags ordinary chat text.
const DefaultMessageType = "text"

var (
	ErrContentEmpty   = errors.New("message content is empty")
	ErrContentTooLong = errors.New("message content exceeds maximum length")
)

// Message is a persisted chat message. Immutable once stored, except for
// the archival marker.
type Message struct {
	ID          uint64     `json:"id"`
	RoomID      string     `json:"room_id"`
	CharacterID string     `json:"character_id"`
	Content     string     `json:"content"`
	MessageType string     `json:"message_type"`
	CreatedAt   time.Time  `json:"created_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// ValidateContent trims surrounding whitespace and enforces the
// 1..MaxContentLength bound. It returns the trimmed content.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrContentEmpty
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// NormalizeMessageType falls back to the default tag for empty input.
func NormalizeMessageType(messageType string) string {
	if strings.TrimSpace(messageType) == "" {
		return DefaultMessageType
	}
	return messageType
}

// BroadcastMessage is the message body pushed to room subscribers after a
// successful persist: the stored fields plus the denormalized character name.
type BroadcastMessage struct {
	ID            uint64    `json:"id"`
	RoomID        string    `json:"room_id"`
	CharacterID   string    `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Content       string    `json:"content"`
	MessageType   string    `json:"message_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToBroadcast builds the fan-out body for a persisted message.
func (m *Message) ToBroadcast(characterName string) BroadcastMessage {
	return BroadcastMessage{
		ID:            m.ID,
		RoomID:        m.RoomID,
		CharacterID:   m.CharacterID,
		CharacterName: characterName,
		Content:       m.Content,
		MessageType:   m.MessageType,
		CreatedAt:     m.CreatedAt,
	}
}

// ExportEntry is the flat projection used by room export snapshots.
type ExportEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Character string    `json:"character"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
}

// HistoryResponse is a paginated history read.
type HistoryResponse struct {
	Messages []Message `json:"messages"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// ExportResponse is a full export snapshot for one room.
type ExportResponse struct {
	RoomID     string        `json:"room_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Entries    []ExportEntry `json:"entries"`
}

// ArchiveResponse reports an archival run.
type ArchiveResponse struct {
	RoomID   string     `json:"room_id"`
	Archived int64      `json:"archived"`
	Before   *time.Time `json:"before,omitempty"`
}
