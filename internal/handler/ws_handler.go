package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/CaseyLotteBenett/textroleplay/internal/config"
	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/hub"
	"github.com/CaseyLotteBenett/textroleplay/internal/service"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub     *hub.Hub
	service service.ChatService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.ChatService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
	}
}

// HandleWebSocket upgrades the connection and registers it with the
// hub. Every connection starts unauthenticated.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.L().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleEvent)
}

func (h *WSHandler) handleEvent(client *hub.Client, message []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid event format"))
		return
	}

	ctx := log.WithLogger(context.Background(), log.L().With().Str(log.FieldClientID, client.ID).Logger())

	switch base.Type {
	case domain.MsgTypeAuthenticate:
		var ev domain.AuthenticateEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid authenticate event"))
			return
		}
		if err := h.service.HandleAuthenticate(ctx, client, ev.Token, ev.CharacterID); err != nil {
			log.L().Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("authenticate failed")
		}

	case domain.MsgTypeJoinRoom:
		var ev domain.JoinRoomEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid join_room event"))
			return
		}
		if err := h.service.HandleJoinRoom(ctx, client, ev.RoomID); err != nil {
			log.L().Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("join room failed")
		}

	case domain.MsgTypeLeaveRoom:
		var ev domain.LeaveRoomEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid leave_room event"))
			return
		}
		if err := h.service.HandleLeaveRoom(ctx, client, ev.RoomID); err != nil {
			log.L().Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("leave room failed")
		}

	case domain.MsgTypeChatMessage:
		var ev domain.ChatMessageEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid chat_message event"))
			return
		}
		if err := h.service.HandleChatMessage(ctx, client, &ev); err != nil {
			log.L().Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("chat message failed")
		}

	case domain.MsgTypePing:
		client.SendEvent(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "unknown event type"))
	}
}
