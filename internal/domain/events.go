package domain

// WebSocket event types from client.
const (
	MsgTypeAuthenticate = "authenticate"
	MsgTypeJoinRoom     = "join_room"
	MsgTypeLeaveRoom    = "leave_room"
	MsgTypeChatMessage  = "chat_message"
	MsgTypePing         = "ping"
)

// WebSocket event types to client.
const (
	MsgTypeAuthenticated = "authenticated"
	MsgTypeRoomJoined    = "room_joined"
	MsgTypeRoomLeft      = "room_left"
	MsgTypeNewMessage    = "new_message"
	MsgTypeError         = "error"
	MsgTypePong          = "pong"
)

// Error codes
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// BaseEvent is the base structure for all WebSocket events.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

// AuthenticateEvent carries the session token plus the character the
// connection wants to speak as. The character id is a hint only; the
// server resolves the user from the token and checks ownership.
type AuthenticateEvent struct {
	Type        string `json:"type"`
	Token       string `json:"token"`
	CharacterID string `json:"character_id"`
}

type JoinRoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type LeaveRoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// ChatMessageEvent may carry a character_id copied in by older clients;
// it is ignored in favor of the session binding.
type ChatMessageEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
	CharacterID string `json:"character_id,omitempty"`
}

// Server -> Client events

type AuthenticatedEvent struct {
	Type          string `json:"type"`
	Success       bool   `json:"success"`
	UserID        string `json:"user_id,omitempty"`
	CharacterID   string `json:"character_id,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
	Message       string `json:"message,omitempty"`
}

type RoomJoinedEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type RoomLeftEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// NewMessageEvent is the broadcast envelope delivered to every
// connection subscribed to the message's room.
type NewMessageEvent struct {
	Type    string           `json:"type"`
	Message BroadcastMessage `json:"message"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
