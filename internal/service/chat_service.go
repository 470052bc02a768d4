package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/hub"
	"github.com/CaseyLotteBenett/textroleplay/internal/identity"
	"github.com/CaseyLotteBenett/textroleplay/internal/kafka"
	"github.com/CaseyLotteBenett/textroleplay/internal/repository"
	"github.com/CaseyLotteBenett/textroleplay/pkg/jwt"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
)

type chatService struct {
	hub        *hub.Hub
	tokens     *jwt.Manager
	characters identity.CharacterProvider
	rooms      repository.RoomRepository
	messages   repository.MessageRepository
	producer   kafka.ArchiveProducer
}

func NewChatService(
	h *hub.Hub,
	tokens *jwt.Manager,
	characters identity.CharacterProvider,
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	producer kafka.ArchiveProducer,
) ChatService {
	return &chatService{
		hub:        h,
		tokens:     tokens,
		characters: characters,
		rooms:      rooms,
		messages:   messages,
		producer:   producer,
	}
}

// HandleAuthenticate resolves the connection's identity server-side:
// the session token names the user, the character id is only a hint
// checked against that user's ownership. Client-supplied identity is
// never trusted as-is.
func (s *chatService) HandleAuthenticate(ctx context.Context, c *hub.Client, token, characterID string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		c.SendEvent(&domain.AuthenticatedEvent{
			Type:    domain.MsgTypeAuthenticated,
			Success: false,
			Message: "invalid or expired session token",
		})
		return fmt.Errorf("authenticate: %w", err)
	}

	character, err := s.characters.GetCharacter(ctx, characterID)
	if err != nil {
		msg := "failed to look up character"
		if errors.Is(err, identity.ErrCharacterNotFound) {
			msg = "unknown character"
		}
		c.SendEvent(&domain.AuthenticatedEvent{
			Type:    domain.MsgTypeAuthenticated,
			Success: false,
			Message: msg,
		})
		return fmt.Errorf("authenticate character %s: %w", characterID, err)
	}

	if character.UserID != claims.UserID {
		c.SendEvent(&domain.AuthenticatedEvent{
			Type:    domain.MsgTypeAuthenticated,
			Success: false,
			Message: "character does not belong to this account",
		})
		return fmt.Errorf("authenticate: character %s not owned by user %s", characterID, claims.UserID)
	}

	name := character.FullName()
	c.Session.Authenticate(claims.UserID, character.ID, name)

	log.Ctx(ctx).Info().
		Str(log.FieldClientID, c.ID).
		Str(log.FieldUserID, claims.UserID).
		Str(log.FieldCharacterID, character.ID).
		Msg("connection authenticated")

	return c.SendEvent(&domain.AuthenticatedEvent{
		Type:          domain.MsgTypeAuthenticated,
		Success:       true,
		UserID:        claims.UserID,
		CharacterID:   character.ID,
		CharacterName: name,
	})
}

func (s *chatService) HandleJoinRoom(ctx context.Context, c *hub.Client, roomID string) error {
	if !c.Session.IsAuthenticated() {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeUnauthenticated, "not authenticated"))
	}

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeNotFound, "room not found"))
		}
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "failed to join room"))
		return fmt.Errorf("join room %s: %w", roomID, err)
	}

	s.hub.JoinRoom(c, roomID)
	c.Session.JoinRoom(roomID)

	return c.SendEvent(&domain.RoomJoinedEvent{
		Type:   domain.MsgTypeRoomJoined,
		RoomID: roomID,
	})
}

func (s *chatService) HandleLeaveRoom(ctx context.Context, c *hub.Client, roomID string) error {
	if !c.Session.InRoom(roomID) {
		return nil
	}

	s.hub.LeaveRoom(c, roomID)
	c.Session.LeaveRoom(roomID)

	return c.SendEvent(&domain.RoomLeftEvent{
		Type:   domain.MsgTypeRoomLeft,
		RoomID: roomID,
	})
}

// HandleChatMessage validates, persists and fans out one inbound chat
// event. The message is attributed to the session's bound character;
// any character id in the payload is ignored. Fan-out happens only
// after the persist commits, so a crash in between loses the broadcast
// but never the record.
func (s *chatService) HandleChatMessage(ctx context.Context, c *hub.Client, event *domain.ChatMessageEvent) error {
	if !c.Session.IsAuthenticated() {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeUnauthenticated, "not authenticated"))
	}

	if event.RoomID == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeValidation, "room_id is required"))
	}

	content, err := domain.ValidateContent(event.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContentEmpty):
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeValidation, "message content is empty"))
		case errors.Is(err, domain.ErrContentTooLong):
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeValidation, "message content is too long"))
		default:
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeValidation, "invalid message content"))
		}
	}

	if _, err := s.rooms.GetByID(ctx, event.RoomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeNotFound, "room not found"))
		}
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "failed to send message"))
		return fmt.Errorf("chat message room %s: %w", event.RoomID, err)
	}

	_, characterID, characterName := c.Session.Identity()

	msg := &domain.Message{
		RoomID:      event.RoomID,
		CharacterID: characterID,
		Content:     content,
		MessageType: domain.NormalizeMessageType(event.MessageType),
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "failed to send message"))
		return fmt.Errorf("persist chat message: %w", err)
	}

	envelope := &domain.NewMessageEvent{
		Type:    domain.MsgTypeNewMessage,
		Message: msg.ToBroadcast(characterName),
	}

	if err := s.hub.BroadcastToRoom(msg.RoomID, envelope); err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64(log.FieldMessageID, msg.ID).Msg("failed to queue broadcast")
	}

	// Mirror onto the archive stream; the chat path never waits on it.
	if err := s.producer.ProduceMessage(ctx, msg); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint64(log.FieldMessageID, msg.ID).Msg("failed to produce archive message")
	}

	return nil
}

func (s *chatService) Stop() error {
	if err := s.producer.Close(); err != nil {
		log.L().Warn().Err(err).Msg("failed to close archive producer")
	}
	return nil
}
