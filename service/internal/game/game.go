// internal/game/game.go
package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/seega/engine"
	"github.com/jason-s-yu/seega/service/internal/cache"
	"github.com/jason-s-yu/seega/service/internal/database"
	log "github.com/sirupsen/logrus"
)

// chatHistoryLimit bounds the retained chat lines.
const chatHistoryLimit = 200

// ErrEmptyMessage is returned for a chat line with no text.
var ErrEmptyMessage = errors.New("empty message")

// Outcome is what a handled event produced. Match fills it under its lock;
// the caller delivers it after the lock is released.
type Outcome struct {
	MatchID uuid.UUID

	// ReplyTo names the player who sent the event, when known. Rejections
	// are delivered to this player's queue.
	ReplyTo string

	// Snapshot is the state to broadcast; nil when the event left the board
	// untouched (chat).
	Snapshot *Snapshot

	// Notifications are chat lines to broadcast, in order.
	Notifications []Notification

	// Direct names a player who should also receive Snapshot privately.
	Direct string

	// Joined and Left name players whose private queue must be declared or
	// removed.
	Joined string
	Left   string

	// Record is the action log entry for an accepted transition.
	Record *cache.GameActionRecord

	// Result is set when this transition decided the match.
	Result *database.MatchRecord
}

// Match owns one Seega game and its seats. All transitions run under mu.
type Match struct {
	mu sync.Mutex

	id          uuid.UUID
	state       engine.GameState
	registry    Registry
	chat        []Notification
	actionIndex int

	log *log.Logger
}

// NewMatch creates a match with the given rules. A nil logger uses the
// logrus standard logger.
func NewMatch(rules engine.Rules, logger *log.Logger) (*Match, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	m := &Match{
		id:    uuid.New(),
		state: engine.NewGame(rules),
		log:   logger,
	}
	m.log.Infof("Game %s: created (board %dx%d, %d pieces each, capture %s).",
		m.id, rules.BoardSize, rules.BoardSize, rules.HandSize, rules.Capture)
	return m, nil
}

// Handle applies ev as one atomic transition. On error the match is
// unchanged and the returned Outcome carries only MatchID and ReplyTo.
func (m *Match) Handle(ev Event) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := Outcome{MatchID: m.id}
	wasFinished := m.state.IsFinished()

	// A rejected event leaves the match as it found it, even when it was
	// rejected after an earlier step had already applied.
	saved, seats := m.state.Save(), m.registry

	var (
		actor   engine.Slot
		payload map[string]interface{}
		err     error
	)

	switch e := ev.(type) {
	case Connect:
		actor, err = m.connect(e, &out)
		payload = map[string]interface{}{"name": strings.TrimSpace(e.PlayerName)}

	case Place:
		actor = e.Slot
		out.ReplyTo = m.seatedName(e.Slot)
		to := engine.Coord{Row: e.Row, Col: e.Col}
		if err = m.registry.requireSeated(e.Slot); err == nil {
			err = m.state.Place(e.Slot, to)
		}
		payload = map[string]interface{}{"destination": pair(to)}

	case Slide:
		actor = e.Slot
		out.ReplyTo = m.seatedName(e.Slot)
		from := engine.Coord{Row: e.FromRow, Col: e.FromCol}
		to := engine.Coord{Row: e.ToRow, Col: e.ToCol}
		var captured []engine.Coord
		if err = m.registry.requireSeated(e.Slot); err == nil {
			captured, err = m.state.Slide(e.Slot, from, to)
		}
		payload = map[string]interface{}{"origin": pair(from), "destination": pair(to), "captures": len(captured)}

	case Surrender:
		actor = e.Slot
		out.ReplyTo = m.seatedName(e.Slot)
		if err = m.registry.requireSeated(e.Slot); err == nil {
			err = m.state.Surrender(e.Slot)
		}
		if err == nil {
			m.notify(&out, fmt.Sprintf("%s gave up. %s wins!", m.nameOf(e.Slot), m.nameOf(e.Slot.Opponent())))
		}

	case Reset:
		m.reset(&out)

	case Disconnect:
		actor = e.Slot
		err = m.disconnect(e, &out)

	case Chat:
		return m.relayChat(e, out)

	default:
		return out, fmt.Errorf("unhandled event %T", ev)
	}

	if err != nil {
		m.state.Restore(saved)
		m.registry = seats
		m.log.Warnf("Game %s: rejected %s from %s: %v", m.id, actionType(ev), describe(actor, out.ReplyTo), err)
		return Outcome{MatchID: m.id, ReplyTo: out.ReplyTo}, err
	}

	if !wasFinished && m.state.IsFinished() {
		if m.state.WinReason == engine.WinCaptures {
			m.notify(&out, fmt.Sprintf("%s has too few pieces left. %s wins!", m.nameOf(m.state.Winner.Opponent()), m.nameOf(m.state.Winner)))
		}
		out.Result = m.result()
		m.log.Infof("Game %s: %s wins by %s after %d moves.", m.id, m.state.Winner, m.state.WinReason, m.state.MoveNumber)
	}

	snap := buildSnapshot(&m.state, &m.registry)
	out.Snapshot = &snap
	out.MatchID = m.id
	out.Record = m.record(ev, actor, payload)
	return out, nil
}

func (m *Match) connect(e Connect, out *Outcome) (engine.Slot, error) {
	name := strings.TrimSpace(e.PlayerName)
	out.ReplyTo = name
	rejoin := name != "" && m.registry.SlotOf(name) != engine.SlotNone
	slot, err := m.registry.Join(name)
	if err != nil {
		return engine.SlotNone, err
	}
	out.Direct = name
	out.Joined = name
	if rejoin {
		m.log.Infof("Game %s: %s reconnected as %s.", m.id, name, slot)
	} else {
		m.log.Infof("Game %s: %s joined as %s.", m.id, name, slot)
		m.notify(out, fmt.Sprintf("%s (%s) joined.", name, slot))
	}
	return slot, nil
}

func (m *Match) disconnect(e Disconnect, out *Outcome) error {
	p, err := m.registry.Leave(e.Slot)
	if err != nil {
		return err
	}
	out.ReplyTo = p.Name
	out.Left = p.Name
	m.log.Infof("Game %s: %s (%s) left.", m.id, p.Name, e.Slot)

	remaining := e.Slot.Opponent()
	if !m.state.IsFinished() && m.registry.Seated() == 1 && m.registry.Player(remaining) != nil {
		if err := m.state.Forfeit(remaining); err != nil {
			return fmt.Errorf("forfeit after %s left: %w", p.Name, err)
		}
		m.notify(out, fmt.Sprintf("%s disconnected. %s wins!", p.Name, m.nameOf(remaining)))
		return nil
	}
	m.notify(out, fmt.Sprintf("%s left.", p.Name))
	return nil
}

func (m *Match) reset(out *Outcome) {
	m.state.Reset()
	m.id = uuid.New()
	m.chat = nil
	m.actionIndex = 0
	m.log.Infof("Game %s: new match started.", m.id)
	m.notify(out, "New match started!")
}

func (m *Match) relayChat(e Chat, out Outcome) (Outcome, error) {
	sender := strings.TrimSpace(e.Sender)
	text := strings.TrimSpace(e.Text)
	out.ReplyTo = sender
	if sender == "" {
		return out, ErrInvalidIdentity
	}
	if text == "" {
		return out, ErrEmptyMessage
	}
	m.appendChat(Notification{Sender: sender, Text: text})
	out.Notifications = []Notification{{Sender: sender, Text: text}}
	return out, nil
}

// notify queues a server notice and keeps it in the chat history.
func (m *Match) notify(out *Outcome, text string) {
	n := Notification{Sender: ServerSender, Text: text}
	m.appendChat(n)
	out.Notifications = append(out.Notifications, n)
}

func (m *Match) appendChat(n Notification) {
	m.chat = append(m.chat, n)
	if over := len(m.chat) - chatHistoryLimit; over > 0 {
		m.chat = append([]Notification(nil), m.chat[over:]...)
	}
}

// nameOf returns the player seated at slot, or the slot label if vacant.
func (m *Match) nameOf(slot engine.Slot) string {
	if name := m.seatedName(slot); name != "" {
		return name
	}
	return slot.String()
}

func (m *Match) seatedName(slot engine.Slot) string {
	if p := m.registry.Player(slot); p != nil {
		return p.Name
	}
	return ""
}

func describe(slot engine.Slot, name string) string {
	switch {
	case name != "" && slot.Valid():
		return fmt.Sprintf("%s (%s)", name, slot)
	case name != "":
		return name
	case slot.Valid():
		return slot.String()
	}
	return "server"
}

// record builds the action log entry for an accepted event.
func (m *Match) record(ev Event, actor engine.Slot, payload map[string]interface{}) *cache.GameActionRecord {
	m.actionIndex++
	rec := &cache.GameActionRecord{
		ID:            uuid.New(),
		GameID:        m.id,
		ActionIndex:   m.actionIndex,
		ActionType:    actionType(ev),
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if actor.Valid() {
		rec.ActorSlot = actor.String()
		if p := m.registry.Player(actor); p != nil {
			rec.ActorUserID = p.ID
		}
	}
	return rec
}

// result summarises a decided match for persistence.
func (m *Match) result() *database.MatchRecord {
	winner := m.state.Winner
	return &database.MatchRecord{
		MatchID:    m.id,
		Winner:     winner.String(),
		WinnerName: m.nameOf(winner),
		LoserName:  m.nameOf(winner.Opponent()),
		Reason:     m.state.WinReason.String(),
		Moves:      int(m.state.MoveNumber),
		CapturedP1: m.state.PiecesCaptured(engine.P1),
		CapturedP2: m.state.PiecesCaptured(engine.P2),
		FinishedAt: time.Now().UTC(),
	}
}

// ---------------------------------------------------------------------------
// Read accessors
// ---------------------------------------------------------------------------

// ID returns the current match ID. It changes on every reset.
func (m *Match) ID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Snapshot returns the public view of the match.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return buildSnapshot(&m.state, &m.registry)
}

// State returns a copy of the engine state.
func (m *Match) State() engine.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LegalMoves lists the moves slot may make right now.
func (m *Match) LegalMoves(slot engine.Slot) []engine.Move {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.LegalMoves(slot)
}

// ChatHistory returns the chat lines since the last reset.
func (m *Match) ChatHistory() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.chat...)
}

// SlotOf returns the seat held by name, or SlotNone.
func (m *Match) SlotOf(name string) engine.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.SlotOf(strings.TrimSpace(name))
}

// PlayerName returns who holds slot, or "" if the seat is vacant.
func (m *Match) PlayerName(slot engine.Slot) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seatedName(slot)
}
