// internal/models/player.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/seega/engine"
)

// Player is a human occupying one seat of a match.
type Player struct {
	ID       uuid.UUID   `json:"id"`       // Assigned on first join, stable across reconnects.
	Name     string      `json:"name"`     // Identity supplied by the client; unique per match.
	Slot     engine.Slot `json:"-"`        // Seat held by this player.
	JoinedAt time.Time   `json:"joinedAt"` // Time of the first join.
}

// NewPlayer creates a player record for name seated at slot.
func NewPlayer(name string, slot engine.Slot) *Player {
	return &Player{
		ID:       uuid.New(),
		Name:     name,
		Slot:     slot,
		JoinedAt: time.Now(),
	}
}
