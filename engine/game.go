// Package engine implements the Seega rules.
//
// The engine is a pure state machine over a flat value type: it performs no
// I/O and holds no locks. Callers that share a GameState between goroutines
// must serialise access themselves (see service/internal/game).
package engine

import "fmt"

// GameState holds the complete, self-contained state of a Seega match.
// It contains no pointers or slices, so copying it is a full snapshot.
type GameState struct {
	Board              Board
	Phase              Phase
	Turn               Slot
	Hand               [2]uint8 // pieces still to place, indexed by slot
	OnBoard            [2]uint8 // pieces on the board, indexed by slot
	Captured           [2]uint8 // opposing pieces removed by each slot
	PlacementsThisTurn uint8
	Blockade           bool
	Winner             Slot
	WinReason          WinReason
	MoveNumber         uint16
	LastMove           LastMoveInfo
	Rules              Rules
}

// NewGame returns a match at its initial position. Rules must be valid.
func NewGame(rules Rules) GameState {
	if err := rules.Validate(); err != nil {
		panic(fmt.Sprintf("engine: NewGame with invalid rules: %v", err))
	}
	var g GameState
	g.Rules = rules
	g.Reset()
	return g
}

// Reset starts a new match with the same rules: empty board, full hands,
// P1 to play, no winner.
func (g *GameState) Reset() {
	rules := g.Rules
	*g = GameState{Rules: rules}
	g.Board = NewBoard(rules.BoardSize)
	g.Phase = PhasePlacement
	g.Turn = P1
	g.Hand = [2]uint8{rules.HandSize, rules.HandSize}
	g.Blockade = rules.CentralBlockade
	if g.Blockade {
		g.Board.Set(g.Board.Center(), CellBlocked)
	}
	g.mustHoldInvariants()
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsFinished reports whether a winner has been decided.
func (g *GameState) IsFinished() bool { return g.Winner != SlotNone }

// PiecesInHand returns how many pieces slot has left to place.
func (g *GameState) PiecesInHand(slot Slot) int { return int(g.Hand[slot.index()]) }

// PiecesOnBoard returns how many of slot's pieces are on the board.
func (g *GameState) PiecesOnBoard(slot Slot) int { return int(g.OnBoard[slot.index()]) }

// PiecesCaptured returns how many opposing pieces slot has removed.
func (g *GameState) PiecesCaptured(slot Slot) int { return int(g.Captured[slot.index()]) }

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of GameState.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

// mustHoldInvariants panics if the state is internally inconsistent. A
// failure here is a bug in the engine, never a player error.
func (g *GameState) mustHoldInvariants() {
	hand := g.Rules.HandSize
	for _, s := range [2]Slot{P1, P2} {
		i := s.index()
		if g.Hand[i] > hand || g.OnBoard[i] > hand || int(g.Hand[i])+int(g.OnBoard[i]) > int(hand) {
			panic(fmt.Sprintf("engine: invariant violated: %s hand=%d onBoard=%d exceeds %d", s, g.Hand[i], g.OnBoard[i], hand))
		}
		if got := g.Board.Count(s.Piece()); got != int(g.OnBoard[i]) {
			panic(fmt.Sprintf("engine: invariant violated: %s has %d pieces on board, counter says %d", s, got, g.OnBoard[i]))
		}
	}
	center, _ := g.Board.CellAt(g.Board.Center())
	wantBlocked := g.Blockade && g.Phase == PhasePlacement
	if (center == CellBlocked) != wantBlocked {
		panic(fmt.Sprintf("engine: invariant violated: centre is %s with blockade=%v phase=%s", center, g.Blockade, g.Phase))
	}
	if g.Board.Count(CellBlocked) > 1 {
		panic("engine: invariant violated: more than one blocked cell")
	}
	if g.PlacementsThisTurn >= PlacementsPerTurn {
		panic(fmt.Sprintf("engine: invariant violated: %d placements this turn", g.PlacementsThisTurn))
	}
	if g.Phase == PhaseMovement && (g.Hand[0] != 0 || g.Hand[1] != 0) {
		panic("engine: invariant violated: movement phase with pieces in hand")
	}
}

// decrement lowers a counter, panicking instead of wrapping below zero.
func decrement(counter *uint8, what string) {
	if *counter == 0 {
		panic(fmt.Sprintf("engine: invariant violated: %s would go negative", what))
	}
	*counter--
}
