package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/service"
	"github.com/CaseyLotteBenett/textroleplay/pkg/jwt"
	"github.com/CaseyLotteBenett/textroleplay/pkg/middleware"
)

type fakeRoomService struct {
	rooms []domain.ChatRoom
}

func (s *fakeRoomService) EnsureDefaultRooms(ctx context.Context) error { return nil }

func (s *fakeRoomService) CreateRoom(ctx context.Context, name, description string, isPublic bool) (*domain.ChatRoom, error) {
	for _, r := range s.rooms {
		if r.Name == name {
			return nil, service.ErrRoomExists
		}
	}
	room := domain.ChatRoom{ID: "room-new", Name: name, Description: description, IsPublic: isPublic}
	s.rooms = append(s.rooms, room)
	return &room, nil
}

func (s *fakeRoomService) GetRoom(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	for _, r := range s.rooms {
		if r.ID == roomID {
			room := r
			return &room, nil
		}
	}
	return nil, service.ErrRoomNotFound
}

func (s *fakeRoomService) GetRoomByName(ctx context.Context, name string) (*domain.ChatRoom, error) {
	for _, r := range s.rooms {
		if r.Name == name {
			room := r
			return &room, nil
		}
	}
	return nil, service.ErrRoomNotFound
}

func (s *fakeRoomService) ListRooms(ctx context.Context) ([]domain.ChatRoom, error) {
	return s.rooms, nil
}

type fakeHistoryService struct {
	lastLimit  int
	lastOffset int
}

func (s *fakeHistoryService) GetHistory(ctx context.Context, roomID string, limit, offset int) (*domain.HistoryResponse, error) {
	if roomID == "nowhere" {
		return nil, service.ErrRoomNotFound
	}
	if limit < 1 {
		limit = service.DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	s.lastLimit = limit
	s.lastOffset = offset
	return &domain.HistoryResponse{Messages: []domain.Message{}, Limit: limit, Offset: offset}, nil
}

func (s *fakeHistoryService) ExportRoom(ctx context.Context, roomID string) (*domain.ExportResponse, error) {
	if roomID == "nowhere" {
		return nil, service.ErrRoomNotFound
	}
	return &domain.ExportResponse{RoomID: roomID, ExportedAt: time.Now()}, nil
}

func (s *fakeHistoryService) ArchiveRoom(ctx context.Context, roomID string, before *time.Time) (*domain.ArchiveResponse, error) {
	if roomID == "nowhere" {
		return nil, service.ErrRoomNotFound
	}
	return &domain.ArchiveResponse{RoomID: roomID, Archived: 2, Before: before}, nil
}

type apiFixture struct {
	router  *gin.Engine
	tokens  *jwt.Manager
	rooms   *fakeRoomService
	history *fakeHistoryService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := jwt.NewManager("test-secret", "textroleplay", time.Hour)
	rooms := &fakeRoomService{rooms: []domain.ChatRoom{
		{ID: "tavern", Name: "The Hearth", IsPublic: true},
	}}
	history := &fakeHistoryService{}

	router := gin.New()
	NewHTTPHandler(rooms, history).RegisterRoutes(router, middleware.NewAuthMiddleware(tokens))

	return &apiFixture{router: router, tokens: tokens, rooms: rooms, history: history}
}

func (f *apiFixture) request(t *testing.T, method, path string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authed {
		token, err := f.tokens.IssueToken("user-1", "aria")
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return body
}

func TestHealthIsPublic(t *testing.T) {
	f := newAPIFixture(t)
	w := f.request(t, http.MethodGet, "/health", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	f := newAPIFixture(t)
	w := f.request(t, http.MethodGet, "/api/v1/rooms", false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestListRooms(t *testing.T) {
	f := newAPIFixture(t)
	w := f.request(t, http.MethodGet, "/api/v1/rooms", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeEnvelope(t, w)
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data := body["data"].(map[string]interface{})
	if rooms := data["rooms"].([]interface{}); len(rooms) != 1 {
		t.Errorf("expected 1 room, got %d", len(rooms))
	}
}

func TestGetMessagesInvalidPaginationFallsBack(t *testing.T) {
	f := newAPIFixture(t)
	w := f.request(t, http.MethodGet, "/api/v1/rooms/tavern/messages?limit=abc&offset=-9", true)
	if w.Code != http.StatusOK {
		t.Fatalf("malformed pagination must not error, got %d: %s", w.Code, w.Body.String())
	}
	if f.history.lastLimit != service.DefaultLimit || f.history.lastOffset != 0 {
		t.Errorf("expected default pagination, got limit=%d offset=%d", f.history.lastLimit, f.history.lastOffset)
	}
}

func TestGetMessagesUnknownRoom(t *testing.T) {
	f := newAPIFixture(t)
	w := f.request(t, http.MethodGet, "/api/v1/rooms/nowhere/messages", true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["success"] != false {
		t.Errorf("expected failure envelope, got %v", body)
	}
}

func TestExportRoom(t *testing.T) {
	f := newAPIFixture(t)
	w := f.request(t, http.MethodGet, "/api/v1/rooms/tavern/export", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	if data["room_id"] != "tavern" {
		t.Errorf("unexpected export payload: %v", data)
	}
}

func TestArchiveRoomWithoutBody(t *testing.T) {
	f := newAPIFixture(t)
	w := f.request(t, http.MethodPost, "/api/v1/rooms/tavern/archive", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	if data["archived"] != float64(2) {
		t.Errorf("unexpected archive payload: %v", data)
	}
}
