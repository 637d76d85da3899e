package shared

import (
	"fmt"
	"strings"
)

// PlayerID is a value object representing a player's opaque unique identifier
// (the chat user id handed over by the front-end)
type PlayerID struct {
	value string
}

// NewPlayerID creates a new PlayerID value object
func NewPlayerID(id string) (PlayerID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PlayerID{}, NewValidationError("player_id", "must not be empty")
	}
	if len(id) > 64 {
		return PlayerID{}, NewValidationError("player_id", fmt.Sprintf("must be at most 64 characters, got %d", len(id)))
	}
	return PlayerID{value: id}, nil
}

// MustNewPlayerID creates a new PlayerID value object, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database)
func MustNewPlayerID(id string) PlayerID {
	playerID, err := NewPlayerID(id)
	if err != nil {
		panic(err)
	}
	return playerID
}

// Value returns the raw value of the PlayerID
func (p PlayerID) Value() string {
	return p.value
}

// String returns a string representation of the PlayerID
func (p PlayerID) String() string {
	return p.value
}

// Equals checks if two PlayerIDs are equal
func (p PlayerID) Equals(other PlayerID) bool {
	return p.value == other.value
}

// IsZero checks if the PlayerID is the zero value (uninitialized)
func (p PlayerID) IsZero() bool {
	return p.value == ""
}
