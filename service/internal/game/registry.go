// internal/game/registry.go
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jason-s-yu/seega/engine"
	"github.com/jason-s-yu/seega/service/internal/models"
)

var (
	// ErrGameFull is returned when both seats are taken by other players.
	ErrGameFull = errors.New("game full")
	// ErrSeatVacant is returned for requests naming a seat nobody holds.
	ErrSeatVacant = errors.New("seat vacant")
	// ErrInvalidIdentity is returned for an empty player name.
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Reason extends engine.Reason with the registry's rejections.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrGameFull):
		return "game_full"
	case errors.Is(err, ErrSeatVacant):
		return "seat_vacant"
	case errors.Is(err, ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, ErrEmptyMessage):
		return "empty_message"
	}
	if code := engine.Reason(err); code != "" {
		return code
	}
	return "internal"
}

// Registry maps the two seats to connected players. It is not safe for
// concurrent use; Match serialises access.
type Registry struct {
	seats [2]*models.Player
}

func seatIndex(slot engine.Slot) int {
	switch slot {
	case engine.P1:
		return 0
	case engine.P2:
		return 1
	}
	return -1
}

// Join seats name in the first free slot, P1 before P2. A name that is
// already seated gets its existing slot back.
func (r *Registry) Join(name string) (engine.Slot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return engine.SlotNone, ErrInvalidIdentity
	}
	if slot := r.SlotOf(name); slot != engine.SlotNone {
		return slot, nil
	}
	for i, slot := range [2]engine.Slot{engine.P1, engine.P2} {
		if r.seats[i] == nil {
			r.seats[i] = models.NewPlayer(name, slot)
			return slot, nil
		}
	}
	return engine.SlotNone, fmt.Errorf("%w: %q cannot join, both seats taken", ErrGameFull, name)
}

// Leave vacates slot and returns the player who held it.
func (r *Registry) Leave(slot engine.Slot) (*models.Player, error) {
	i := seatIndex(slot)
	if i < 0 || r.seats[i] == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeatVacant, slot)
	}
	p := r.seats[i]
	r.seats[i] = nil
	return p, nil
}

// Player returns who holds slot, or nil.
func (r *Registry) Player(slot engine.Slot) *models.Player {
	i := seatIndex(slot)
	if i < 0 {
		return nil
	}
	return r.seats[i]
}

// SlotOf returns the seat held by name, or SlotNone.
func (r *Registry) SlotOf(name string) engine.Slot {
	for _, p := range r.seats {
		if p != nil && p.Name == name {
			return p.Slot
		}
	}
	return engine.SlotNone
}

// Seated reports how many seats are occupied.
func (r *Registry) Seated() int {
	n := 0
	for _, p := range r.seats {
		if p != nil {
			n++
		}
	}
	return n
}

// Players returns the seated names keyed by slot.
func (r *Registry) Players() map[engine.Slot]string {
	out := make(map[engine.Slot]string, 2)
	for _, p := range r.seats {
		if p != nil {
			out[p.Slot] = p.Name
		}
	}
	return out
}

// requireSeated rejects game actions from a seat nobody holds.
func (r *Registry) requireSeated(slot engine.Slot) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: no such slot %d", engine.ErrNotYourTurn, uint8(slot))
	}
	if r.Player(slot) == nil {
		return fmt.Errorf("%w: %s", ErrSeatVacant, slot)
	}
	return nil
}
