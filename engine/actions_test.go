package engine

import (
	"errors"
	"testing"
)

// TestPlacementTurnAlternation verifies each player places exactly twice
// before the turn passes.
func TestPlacementTurnAlternation(t *testing.T) {
	g := NewGame(DefaultRules())

	steps := []struct {
		slot     Slot
		to       Coord
		wantErr  error
		wantTurn Slot
	}{
		{P1, Coord{0, 0}, nil, P1},
		{P2, Coord{0, 1}, ErrNotYourTurn, P1},
		{P1, Coord{0, 1}, nil, P2},
		{P1, Coord{0, 2}, ErrNotYourTurn, P2},
		{P2, Coord{0, 2}, nil, P2},
		{P2, Coord{0, 3}, nil, P1},
		{P1, Coord{0, 4}, nil, P1},
	}
	for i, s := range steps {
		err := g.Place(s.slot, s.to)
		if !errors.Is(err, s.wantErr) {
			t.Fatalf("step %d: Place(%s, %s) = %v, want %v", i, s.slot, s.to, err, s.wantErr)
		}
		if g.Turn != s.wantTurn {
			t.Fatalf("step %d: Turn = %s, want %s", i, g.Turn, s.wantTurn)
		}
	}
	if g.PlacementsThisTurn != 1 {
		t.Errorf("PlacementsThisTurn = %d, want 1", g.PlacementsThisTurn)
	}
}

// TestPlacementCounters verifies hand and board counters move together.
func TestPlacementCounters(t *testing.T) {
	g := NewGame(DefaultRules())
	if err := g.Place(P1, Coord{4, 4}); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if got := g.PiecesInHand(P1); got != DefaultHandSize-1 {
		t.Errorf("P1 hand = %d, want %d", got, DefaultHandSize-1)
	}
	if got := g.PiecesOnBoard(P1); got != 1 {
		t.Errorf("P1 on board = %d, want 1", got)
	}
	if got := g.PiecesInHand(P2); got != DefaultHandSize {
		t.Errorf("P2 hand changed to %d", got)
	}
	if !g.LastMove.Valid || g.LastMove.Move != PlaceAt(P1, Coord{4, 4}) {
		t.Errorf("LastMove = %+v", g.LastMove.Move)
	}
}

// TestPhaseTransition verifies the movement phase starts exactly when both
// hands are empty, clears the blockade, and hands the move to P1.
func TestPhaseTransition(t *testing.T) {
	g := NewGame(DefaultRules())
	placements := 0
	for g.Phase == PhasePlacement {
		moves := g.LegalMoves(g.Turn)
		if err := g.Apply(moves[0]); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		placements++
		if g.Phase == PhasePlacement && g.Hand[0] == 0 && g.Hand[1] == 0 {
			t.Fatal("both hands empty but still placing")
		}
	}
	if placements != 2*DefaultHandSize {
		t.Errorf("placements = %d, want %d", placements, 2*DefaultHandSize)
	}
	if g.Blockade {
		t.Error("blockade still active in movement phase")
	}
	if !g.Board.IsEmpty(g.Board.Center()) {
		t.Error("centre should be empty after placement")
	}
	if g.Turn != P1 {
		t.Errorf("first mover = %s, want P1", g.Turn)
	}
	if g.PiecesOnBoard(P1) != DefaultHandSize || g.PiecesOnBoard(P2) != DefaultHandSize {
		t.Errorf("on board = %d/%d", g.PiecesOnBoard(P1), g.PiecesOnBoard(P2))
	}
	if err := g.Place(P1, Coord{0, 0}); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Place in movement = %v, want ErrWrongPhase", err)
	}
}

// TestOddHandPassesEarly verifies a player whose hand runs out mid-turn
// hands the move over instead of blocking the match.
func TestOddHandPassesEarly(t *testing.T) {
	rules := DefaultRules()
	rules.HandSize = 3
	g := NewGame(rules)

	order := []Slot{P1, P1, P2, P2, P1, P2}
	for i, slot := range order {
		if g.Turn != slot {
			t.Fatalf("placement %d: Turn = %s, want %s", i, g.Turn, slot)
		}
		moves := g.LegalMoves(slot)
		if err := g.Apply(moves[0]); err != nil {
			t.Fatalf("placement %d: %v", i, err)
		}
	}
	if g.Phase != PhaseMovement {
		t.Fatalf("Phase = %s, want movement", g.Phase)
	}
	if g.Turn != P1 {
		t.Errorf("first mover = %s, want P1", g.Turn)
	}
}

// TestSlideWithoutCapturePassesTurn verifies the plain slide hands over.
func TestSlideWithoutCapturePassesTurn(t *testing.T) {
	g := boardFromRows(t, P1, "P----", "-----", "-----", "-----", "B---B")
	if _, err := g.Slide(P1, Coord{0, 0}, Coord{0, 3}); err != nil {
		t.Fatalf("Slide: %v", err)
	}
	if g.Turn != P2 {
		t.Errorf("Turn = %s, want P2", g.Turn)
	}
	if g.MoveNumber != 1 {
		t.Errorf("MoveNumber = %d, want 1", g.MoveNumber)
	}
}

// TestCaptureGrantsExtraMove pins both settings of ExtraMoveOnCapture.
func TestCaptureGrantsExtraMove(t *testing.T) {
	rows := []string{"-----", "-----", "-PB--", "---P-", "B-B-B"}

	g := boardFromRows(t, P1, rows...)
	if _, err := g.Slide(P1, Coord{3, 3}, Coord{2, 3}); err != nil {
		t.Fatalf("Slide: %v", err)
	}
	if g.Turn != P1 {
		t.Errorf("with extra move: Turn = %s, want P1", g.Turn)
	}

	g = boardFromRows(t, P1, rows...)
	g.Rules.ExtraMoveOnCapture = false
	if _, err := g.Slide(P1, Coord{3, 3}, Coord{2, 3}); err != nil {
		t.Fatalf("Slide: %v", err)
	}
	if g.Turn != P2 {
		t.Errorf("without extra move: Turn = %s, want P2", g.Turn)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	g := NewGame(DefaultRules())
	if err := g.Apply(Move{Kind: 9, Slot: P1}); err == nil {
		t.Error("expected error for unknown move kind")
	}
}
