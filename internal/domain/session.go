package domain

import (
	"sync"
	"time"
)

// Session is the ephemeral identity binding for one live connection.
// It is created unauthenticated, bound to (user, character) by a
// successful authenticate event, and destroyed on disconnect. Never
// persisted: a restart clears all bindings.
type Session struct {
	ID            string
	UserID        string
	CharacterID   string
	CharacterName string
	Authenticated bool
	CreatedAt     time.Time
	LastActiveAt  time.Time

	rooms map[string]struct{}
	mu    sync.RWMutex
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
		rooms:        make(map[string]struct{}),
	}
}

// Authenticate binds the server-resolved identity to the connection.
func (s *Session) Authenticate(userID, characterID, characterName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
	s.CharacterID = characterID
	s.CharacterName = characterName
	s.Authenticated = true
	s.LastActiveAt = time.Now()
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Authenticated
}

// Identity returns the bound (userID, characterID, characterName).
func (s *Session) Identity() (string, string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID, s.CharacterID, s.CharacterName
}

func (s *Session) JoinRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[roomID] = struct{}{}
	s.LastActiveAt = time.Now()
}

func (s *Session) LeaveRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
	s.LastActiveAt = time.Now()
}

func (s *Session) InRoom(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok
}

// Rooms returns a copy of the joined room set.
func (s *Session) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		out = append(out, id)
	}
	return out
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
