package engine

import "fmt"

// Cell is the content of one board square.
type Cell uint8

const (
	CellEmpty   Cell = iota // 0
	CellP1                  // 1: piece owned by P1
	CellP2                  // 2: piece owned by P2
	CellBlocked             // 3: central blockade, never holds a piece
)

// Symbol returns the single-character board encoding used on the wire.
func (c Cell) Symbol() string {
	switch c {
	case CellEmpty:
		return "-"
	case CellP1:
		return "P"
	case CellP2:
		return "B"
	case CellBlocked:
		return "X"
	}
	return "?"
}

// Owner returns the slot owning a piece cell, or SlotNone.
func (c Cell) Owner() Slot {
	switch c {
	case CellP1:
		return P1
	case CellP2:
		return P2
	}
	return SlotNone
}

func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellP1:
		return "p1"
	case CellP2:
		return "p2"
	case CellBlocked:
		return "blocked"
	}
	return fmt.Sprintf("cell(%d)", uint8(c))
}

// Slot identifies one of the two seats of a match.
type Slot uint8

const (
	SlotNone Slot = iota // 0: no player (e.g. no winner yet)
	P1                   // 1
	P2                   // 2
)

// Valid reports whether s is P1 or P2.
func (s Slot) Valid() bool { return s == P1 || s == P2 }

// Opponent returns the other seat. SlotNone maps to SlotNone.
func (s Slot) Opponent() Slot {
	switch s {
	case P1:
		return P2
	case P2:
		return P1
	}
	return SlotNone
}

// Piece returns the cell value for this slot's pieces.
func (s Slot) Piece() Cell {
	switch s {
	case P1:
		return CellP1
	case P2:
		return CellP2
	}
	return CellEmpty
}

// index maps P1/P2 to 0/1 for per-player arrays. Panics on SlotNone.
func (s Slot) index() int {
	if !s.Valid() {
		panic(fmt.Sprintf("engine: slot %d has no index", uint8(s)))
	}
	return int(s) - 1
}

func (s Slot) String() string {
	switch s {
	case P1:
		return "P1"
	case P2:
		return "P2"
	}
	return ""
}

// ParseSlot parses "P1" or "P2" (case-sensitive, as on the wire).
func ParseSlot(v string) (Slot, bool) {
	switch v {
	case "P1":
		return P1, true
	case "P2":
		return P2, true
	}
	return SlotNone, false
}

// Phase is the stage of a match.
type Phase uint8

const (
	PhasePlacement Phase = iota + 1 // 1: players drop pieces from hand
	PhaseMovement                   // 2: pieces slide orthogonally
)

func (p Phase) String() string {
	switch p {
	case PhasePlacement:
		return "placement"
	case PhaseMovement:
		return "movement"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// WinReason records how the winner was decided.
type WinReason uint8

const (
	WinNone      WinReason = iota // 0
	WinCaptures                   // 1: opponent reduced to the loss threshold
	WinSurrender                  // 2: opponent surrendered
	WinForfeit                    // 3: opponent left the match
)

func (r WinReason) String() string {
	switch r {
	case WinCaptures:
		return "captures"
	case WinSurrender:
		return "surrender"
	case WinForfeit:
		return "forfeit"
	}
	return ""
}

// Coord addresses a board square by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

func (c Coord) step(d Coord) Coord { return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col} }

// orthogonal holds the four unit steps: up, down, left, right.
var orthogonal = [4]Coord{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// MoveKind distinguishes placement from movement requests.
type MoveKind uint8

const (
	MovePlace MoveKind = iota + 1 // 1
	MoveSlide                     // 2
)

func (k MoveKind) String() string {
	switch k {
	case MovePlace:
		return "place"
	case MoveSlide:
		return "slide"
	}
	return fmt.Sprintf("move(%d)", uint8(k))
}

// Move is a tagged player request. From is ignored for placements.
type Move struct {
	Kind MoveKind
	Slot Slot
	From Coord
	To   Coord
}

// PlaceAt builds a placement request.
func PlaceAt(slot Slot, to Coord) Move {
	return Move{Kind: MovePlace, Slot: slot, To: to}
}

// SlideFrom builds a slide request.
func SlideFrom(slot Slot, from, to Coord) Move {
	return Move{Kind: MoveSlide, Slot: slot, From: from, To: to}
}

func (m Move) String() string {
	if m.Kind == MoveSlide {
		return fmt.Sprintf("%s slide %s->%s", m.Slot, m.From, m.To)
	}
	return fmt.Sprintf("%s place %s", m.Slot, m.To)
}

// MaxCaptures bounds the pieces a single slide can remove: a full run in each
// of the four directions on the largest board.
const MaxCaptures = 4 * (MaxBoardSize - 2)

// LastMoveInfo is a public summary of the most recent accepted move.
type LastMoveInfo struct {
	Valid       bool
	Move        Move
	Captures    [MaxCaptures]Coord
	NumCaptures uint8
}

// Captured returns the captured coordinates as a slice (allocates).
func (l *LastMoveInfo) Captured() []Coord {
	out := make([]Coord, l.NumCaptures)
	copy(out, l.Captures[:l.NumCaptures])
	return out
}
