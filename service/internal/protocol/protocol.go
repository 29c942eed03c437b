// internal/protocol/protocol.go
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jason-s-yu/seega/engine"
	"github.com/jason-s-yu/seega/service/internal/game"
)

// Envelope types.
const (
	TypeConnect    = "connect_player"
	TypeGameAction = "game_action"
	TypeSurrender  = "surrender"
	TypeReset      = "reset"
	TypeDisconnect = "disconnect_player"
	TypeChat       = "chat_message"
	TypeGameState  = "game_state"
	TypeRejected   = "rejected"
)

// Game action names. The Portuguese aliases are what existing clients send.
const (
	ActionPlace      = "place"
	ActionSlide      = "slide"
	actionPlaceAlias = "colocacao"
	actionSlideAlias = "movimento"
)

var (
	// ErrMalformed is returned for envelopes that are not valid JSON or
	// lack required fields.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for an envelope type the server does not
	// handle.
	ErrUnknownType = errors.New("unknown message type")
)

// Envelope is the JSON frame exchanged over queues, topics and websockets.
type Envelope struct {
	Type        string          `json:"type"`
	PlayerName  string          `json:"player_name,omitempty"`
	Action      string          `json:"action,omitempty"`
	Origin      *[2]int         `json:"origin,omitempty"`
	Destination *[2]int         `json:"destination,omitempty"`
	PlayerID    string          `json:"player_id,omitempty"`
	Sender      string          `json:"sender,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
}

// Decode parses an inbound envelope into a game event.
func Decode(body []byte) (game.Event, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env.Event()
}

// Event converts an inbound envelope into a game event.
func (env Envelope) Event() (game.Event, error) {
	switch env.Type {
	case TypeConnect:
		return game.Connect{PlayerName: env.PlayerName}, nil

	case TypeGameAction:
		slot, err := env.slot()
		if err != nil {
			return nil, err
		}
		if env.Destination == nil {
			return nil, fmt.Errorf("%w: game_action without destination", ErrMalformed)
		}
		to := *env.Destination
		switch env.Action {
		case ActionPlace, actionPlaceAlias:
			return game.Place{Slot: slot, Row: to[0], Col: to[1]}, nil
		case ActionSlide, actionSlideAlias:
			if env.Origin == nil {
				return nil, fmt.Errorf("%w: slide without origin", ErrMalformed)
			}
			from := *env.Origin
			return game.Slide{Slot: slot, FromRow: from[0], FromCol: from[1], ToRow: to[0], ToCol: to[1]}, nil
		}
		return nil, fmt.Errorf("%w: action %q", ErrMalformed, env.Action)

	case TypeSurrender:
		slot, err := env.slot()
		if err != nil {
			return nil, err
		}
		return game.Surrender{Slot: slot}, nil

	case TypeReset:
		return game.Reset{}, nil

	case TypeDisconnect:
		slot, err := env.slot()
		if err != nil {
			return nil, err
		}
		return game.Disconnect{Slot: slot}, nil

	case TypeChat:
		var text string
		if len(env.Content) > 0 {
			if err := json.Unmarshal(env.Content, &text); err != nil {
				return nil, fmt.Errorf("%w: chat content must be a string", ErrMalformed)
			}
		}
		return game.Chat{Sender: env.Sender, Text: text}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

func (env Envelope) slot() (engine.Slot, error) {
	slot, ok := engine.ParseSlot(env.PlayerID)
	if !ok {
		return engine.SlotNone, fmt.Errorf("%w: player_id %q", ErrMalformed, env.PlayerID)
	}
	return slot, nil
}

// Encode renders an inbound event as the envelope a client would send.
func Encode(ev game.Event) ([]byte, error) {
	var env Envelope
	switch e := ev.(type) {
	case game.Connect:
		env = Envelope{Type: TypeConnect, PlayerName: e.PlayerName}
	case game.Place:
		env = Envelope{Type: TypeGameAction, Action: ActionPlace, PlayerID: e.Slot.String(), Destination: &[2]int{e.Row, e.Col}}
	case game.Slide:
		env = Envelope{
			Type:        TypeGameAction,
			Action:      ActionSlide,
			PlayerID:    e.Slot.String(),
			Origin:      &[2]int{e.FromRow, e.FromCol},
			Destination: &[2]int{e.ToRow, e.ToCol},
		}
	case game.Surrender:
		env = Envelope{Type: TypeSurrender, PlayerID: e.Slot.String()}
	case game.Reset:
		env = Envelope{Type: TypeReset}
	case game.Disconnect:
		env = Envelope{Type: TypeDisconnect, PlayerID: e.Slot.String()}
	case game.Chat:
		return EncodeChat(game.Notification{Sender: e.Sender, Text: e.Text})
	default:
		return nil, fmt.Errorf("encode: unhandled event %T", ev)
	}
	return json.Marshal(env)
}

// EncodeGameState wraps a snapshot for the game state topic.
func EncodeGameState(snap game.Snapshot) ([]byte, error) {
	content, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return json.Marshal(Envelope{Type: TypeGameState, Content: content})
}

// EncodeChat wraps a chat line for the chat topic.
func EncodeChat(n game.Notification) ([]byte, error) {
	content, err := json.Marshal(n.Text)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: TypeChat, Sender: n.Sender, Content: content})
}

// EncodeRejected tells one player why their request was refused.
func EncodeRejected(reason, detail string) ([]byte, error) {
	content, err := json.Marshal(detail)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: TypeRejected, Reason: reason, Content: content})
}

// RejectionReason maps a decode or game error to its wire code.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	}
	return game.Reason(err)
}
