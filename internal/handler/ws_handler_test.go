package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CaseyLotteBenett/textroleplay/internal/config"
	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/hub"
)

type recordedCall struct {
	method string
	roomID string
}

type fakeChatService struct {
	calls chan recordedCall
}

func newFakeChatService() *fakeChatService {
	return &fakeChatService{calls: make(chan recordedCall, 16)}
}

func (s *fakeChatService) HandleAuthenticate(ctx context.Context, client *hub.Client, token, characterID string) error {
	s.calls <- recordedCall{method: "authenticate"}
	return client.SendEvent(&domain.AuthenticatedEvent{Type: domain.MsgTypeAuthenticated, Success: true})
}

func (s *fakeChatService) HandleJoinRoom(ctx context.Context, client *hub.Client, roomID string) error {
	s.calls <- recordedCall{method: "join_room", roomID: roomID}
	return nil
}

func (s *fakeChatService) HandleLeaveRoom(ctx context.Context, client *hub.Client, roomID string) error {
	s.calls <- recordedCall{method: "leave_room", roomID: roomID}
	return nil
}

func (s *fakeChatService) HandleChatMessage(ctx context.Context, client *hub.Client, event *domain.ChatMessageEvent) error {
	s.calls <- recordedCall{method: "chat_message", roomID: event.RoomID}
	return nil
}

func (s *fakeChatService) Stop() error { return nil }

func wsTestConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 16384,
	}
}

func dialTestServer(t *testing.T, svc *fakeChatService) (*websocket.Conn, func()) {
	t.Helper()

	h := hub.NewHub(wsTestConfig())
	go h.Run()

	wsHandler := NewWSHandler(h, svc, wsTestConfig())
	server := httptest.NewServer(http.HandlerFunc(wsHandler.HandleWebSocket))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev map[string]interface{}
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("invalid event json: %v", err)
	}
	return ev
}

func awaitCall(t *testing.T, svc *fakeChatService) recordedCall {
	t.Helper()
	select {
	case call := <-svc.calls:
		return call
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for service call")
		return recordedCall{}
	}
}

func TestDispatchRoutesEvents(t *testing.T) {
	svc := newFakeChatService()
	conn, cleanup := dialTestServer(t, svc)
	defer cleanup()

	events := []map[string]string{
		{"type": domain.MsgTypeAuthenticate, "token": "tok", "character_id": "char-1"},
		{"type": domain.MsgTypeJoinRoom, "room_id": "tavern"},
		{"type": domain.MsgTypeChatMessage, "room_id": "tavern", "content": "hello"},
		{"type": domain.MsgTypeLeaveRoom, "room_id": "tavern"},
	}
	expect := []string{"authenticate", "join_room", "chat_message", "leave_room"}

	for i, ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			t.Fatalf("write: %v", err)
		}
		call := awaitCall(t, svc)
		if call.method != expect[i] {
			t.Fatalf("event %d routed to %q, expected %q", i, call.method, expect[i])
		}
	}
}

func TestDispatchUnknownEventType(t *testing.T) {
	svc := newFakeChatService()
	conn, cleanup := dialTestServer(t, svc)
	defer cleanup()

	if err := conn.WriteJSON(map[string]string{"type": "teleport"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ev := readEvent(t, conn)
	if ev["type"] != domain.MsgTypeError || ev["code"] != domain.ErrCodeBadRequest {
		t.Fatalf("expected BAD_REQUEST error event, got %v", ev)
	}
}

func TestDispatchMalformedJSON(t *testing.T) {
	svc := newFakeChatService()
	conn, cleanup := dialTestServer(t, svc)
	defer cleanup()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	ev := readEvent(t, conn)
	if ev["type"] != domain.MsgTypeError || ev["code"] != domain.ErrCodeBadRequest {
		t.Fatalf("expected BAD_REQUEST error event, got %v", ev)
	}
}

func TestPingPong(t *testing.T) {
	svc := newFakeChatService()
	conn, cleanup := dialTestServer(t, svc)
	defer cleanup()

	if err := conn.WriteJSON(map[string]string{"type": domain.MsgTypePing}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ev := readEvent(t, conn)
	if ev["type"] != domain.MsgTypePong {
		t.Fatalf("expected pong, got %v", ev)
	}
}
