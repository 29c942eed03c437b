package engine

import (
	"math/rand"
	"testing"
)

// boardFromRows builds a movement-phase game from an ASCII picture using the
// wire symbols: P = P1, B = P2, X = blocked, - = empty.
func boardFromRows(t *testing.T, turn Slot, rows ...string) GameState {
	t.Helper()
	g := NewGame(DefaultRules())
	g.Board = NewBoard(uint8(len(rows)))
	g.Rules.BoardSize = uint8(len(rows))
	g.Phase = PhaseMovement
	g.Blockade = false
	g.Hand = [2]uint8{}
	g.OnBoard = [2]uint8{}
	g.Turn = turn
	for r, row := range rows {
		if len(row) != len(rows) {
			t.Fatalf("row %d has %d cells, want %d", r, len(row), len(rows))
		}
		for c, ch := range row {
			at := Coord{Row: r, Col: c}
			switch ch {
			case 'P':
				g.Board.Set(at, CellP1)
				g.OnBoard[0]++
			case 'B':
				g.Board.Set(at, CellP2)
				g.OnBoard[1]++
			case 'X':
				g.Board.Set(at, CellBlocked)
			case '-':
			default:
				t.Fatalf("bad cell %q at %s", ch, at)
			}
		}
	}
	return g
}

// playPlacement fills the board through the whole placement phase, taking
// empty squares in row-major order.
func playPlacement(t *testing.T, g *GameState) {
	t.Helper()
	for g.Phase == PhasePlacement {
		moves := g.LegalMoves(g.Turn)
		if len(moves) == 0 {
			t.Fatalf("no legal placement for %s", g.Turn)
		}
		if err := g.Apply(moves[0]); err != nil {
			t.Fatalf("Apply(%s): %v", moves[0], err)
		}
	}
}

// TestNewGameInitialState verifies the canonical starting position.
func TestNewGameInitialState(t *testing.T) {
	g := NewGame(DefaultRules())

	if g.Phase != PhasePlacement {
		t.Errorf("Phase = %s, want placement", g.Phase)
	}
	if g.Turn != P1 {
		t.Errorf("Turn = %s, want P1", g.Turn)
	}
	for _, s := range []Slot{P1, P2} {
		if got := g.PiecesInHand(s); got != DefaultHandSize {
			t.Errorf("%s hand = %d, want %d", s, got, DefaultHandSize)
		}
		if got := g.PiecesOnBoard(s); got != 0 {
			t.Errorf("%s on board = %d, want 0", s, got)
		}
	}
	if g.IsFinished() {
		t.Error("new game reports finished")
	}
	center, err := g.Board.CellAt(g.Board.Center())
	if err != nil {
		t.Fatalf("CellAt(center): %v", err)
	}
	if center != CellBlocked {
		t.Errorf("centre = %s, want blocked", center)
	}
	if got := g.Board.Count(CellEmpty); got != 24 {
		t.Errorf("empty cells = %d, want 24", got)
	}
}

// TestNewGameWithoutBlockade verifies the centre is open when the rule is off.
func TestNewGameWithoutBlockade(t *testing.T) {
	rules := DefaultRules()
	rules.CentralBlockade = false
	rules.HandSize = 10
	g := NewGame(rules)

	if !g.Board.IsEmpty(g.Board.Center()) {
		t.Error("centre should be empty without blockade")
	}
	if err := g.Place(P1, g.Board.Center()); err != nil {
		t.Errorf("placing on open centre: %v", err)
	}
}

// TestNewGameInvalidRulesPanics verifies NewGame refuses unplayable rules.
func TestNewGameInvalidRulesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for even board size")
		}
	}()
	rules := DefaultRules()
	rules.BoardSize = 4
	NewGame(rules)
}

// TestResetIdempotent verifies two resets in a row give the same state.
func TestResetIdempotent(t *testing.T) {
	g := NewGame(DefaultRules())
	playPlacement(t, &g)

	g.Reset()
	first := g.Save()
	g.Reset()
	second := g.Save()

	if first != second {
		t.Error("consecutive resets produced different states")
	}
	if GameState(first) != NewGame(DefaultRules()) {
		t.Error("reset state differs from a fresh game")
	}
}

// TestResetClearsWinner verifies a finished match can be restarted.
func TestResetClearsWinner(t *testing.T) {
	g := NewGame(DefaultRules())
	if err := g.Surrender(P1); err != nil {
		t.Fatalf("Surrender: %v", err)
	}
	g.Reset()
	if g.IsFinished() || g.WinReason != WinNone {
		t.Errorf("after reset Winner=%s reason=%s, want none", g.Winner, g.WinReason)
	}
	if err := g.Place(P1, Coord{0, 0}); err != nil {
		t.Errorf("place after reset: %v", err)
	}
}

// TestSaveRestore verifies Restore undoes moves exactly.
func TestSaveRestore(t *testing.T) {
	g := NewGame(DefaultRules())
	snap := g.Save()

	if err := g.Place(P1, Coord{0, 0}); err != nil {
		t.Fatalf("Place: %v", err)
	}
	g.Restore(snap)

	if g != GameState(snap) {
		t.Error("Restore did not reproduce the saved state")
	}
	if !g.Board.IsEmpty(Coord{0, 0}) {
		t.Error("(0,0) should be empty after restore")
	}
}

// TestInvariantPanicsOnCorruptCounters verifies corrupted counters fail loudly.
func TestInvariantPanicsOnCorruptCounters(t *testing.T) {
	g := NewGame(DefaultRules())
	g.OnBoard[0] = 3 // no P1 piece is actually on the board

	defer func() {
		if recover() == nil {
			t.Error("expected invariant panic")
		}
	}()
	g.mustHoldInvariants()
}

// TestPieceCountInvariantRandomPlayouts drives random legal games and checks
// the piece accounting after every move.
func TestPieceCountInvariantRandomPlayouts(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, policy := range []CapturePolicy{CaptureSingle, CaptureRun} {
		rules := DefaultRules()
		rules.Capture = policy
		for game := 0; game < 50; game++ {
			g := NewGame(rules)
			for step := 0; step < 400 && !g.IsFinished(); step++ {
				moves := g.LegalMoves(g.Turn)
				if len(moves) == 0 {
					break
				}
				if err := g.Apply(moves[rng.Intn(len(moves))]); err != nil {
					t.Fatalf("policy %s game %d step %d: %v", policy, game, step, err)
				}
				for _, s := range []Slot{P1, P2} {
					total := g.PiecesInHand(s) + g.PiecesOnBoard(s)
					if total > DefaultHandSize || total < 0 {
						t.Fatalf("%s hand+board = %d", s, total)
					}
				}
				center, _ := g.Board.CellAt(g.Board.Center())
				if (center == CellBlocked) != (g.Phase == PhasePlacement) {
					t.Fatalf("centre %s during %s", center, g.Phase)
				}
			}
		}
	}
}
