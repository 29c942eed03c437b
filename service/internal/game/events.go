// internal/game/events.go
package game

import "github.com/jason-s-yu/seega/engine"

// Event is an inbound request for the match. The set of variants is closed;
// Handle switches over it exhaustively.
type Event interface {
	isEvent()
}

// Connect seats a player by name.
type Connect struct {
	PlayerName string
}

// Place drops a piece from Slot's hand on (Row, Col).
type Place struct {
	Slot     engine.Slot
	Row, Col int
}

// Slide moves one of Slot's pieces in a straight line.
type Slide struct {
	Slot             engine.Slot
	FromRow, FromCol int
	ToRow, ToCol     int
}

// Surrender concedes the match for Slot.
type Surrender struct {
	Slot engine.Slot
}

// Reset starts a fresh match. Seated players keep their seats.
type Reset struct{}

// Disconnect vacates Slot's seat.
type Disconnect struct {
	Slot engine.Slot
}

// Chat relays a message to every subscriber.
type Chat struct {
	Sender string
	Text   string
}

func (Connect) isEvent()    {}
func (Place) isEvent()      {}
func (Slide) isEvent()      {}
func (Surrender) isEvent()  {}
func (Reset) isEvent()      {}
func (Disconnect) isEvent() {}
func (Chat) isEvent()       {}

// actionType names an event in action records.
func actionType(ev Event) string {
	switch ev.(type) {
	case Connect:
		return "player_connect"
	case Place:
		return "piece_place"
	case Slide:
		return "piece_slide"
	case Surrender:
		return "player_surrender"
	case Reset:
		return "game_reset"
	case Disconnect:
		return "player_disconnect"
	case Chat:
		return "chat_message"
	}
	return "unknown"
}
