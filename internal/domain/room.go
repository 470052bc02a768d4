package domain

import "time"

// ChatRoom is a named namespace partitioning chat messages and broadcast
// scope. Rooms are seeded at startup and never deleted.
type ChatRoom struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
}

// SeedRoom describes a well-known room created at startup if absent.
type SeedRoom struct {
	Name        string
	Description string
	IsPublic    bool
}

// DefaultRooms are the rooms every deployment starts with.
var DefaultRooms = []SeedRoom{
	{Name: "The Hearth", Description: "General in-character roleplay for everyone.", IsPublic: true},
	{Name: "The Crossroads", Description: "Open scenes, chance meetings and travel roleplay.", IsPublic: true},
	{Name: "Out of Character", Description: "Planning, questions and anything out of character.", IsPublic: true},
}

// Character is a player-authored persona owned by a user account.
// Characters live in the main application; the chat service only reads them.
type Character struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
}

// FullName joins the non-empty name parts with single spaces.
func (c *Character) FullName() string {
	name := c.FirstName
	if c.MiddleName != "" {
		name += " " + c.MiddleName
	}
	if c.LastName != "" {
		name += " " + c.LastName
	}
	return name
}
