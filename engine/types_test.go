package engine

import (
	"errors"
	"fmt"
	"testing"
)

func TestSlotOpponentAndPiece(t *testing.T) {
	if P1.Opponent() != P2 || P2.Opponent() != P1 || SlotNone.Opponent() != SlotNone {
		t.Error("Opponent mapping wrong")
	}
	if P1.Piece() != CellP1 || P2.Piece() != CellP2 || SlotNone.Piece() != CellEmpty {
		t.Error("Piece mapping wrong")
	}
	if CellP1.Owner() != P1 || CellP2.Owner() != P2 || CellBlocked.Owner() != SlotNone {
		t.Error("Owner mapping wrong")
	}
}

func TestParseSlot(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Slot
		ok   bool
	}{
		{"P1", P1, true},
		{"P2", P2, true},
		{"p1", SlotNone, false},
		{"", SlotNone, false},
	} {
		got, ok := ParseSlot(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseSlot(%q) = %s,%v want %s,%v", tc.in, got, ok, tc.want, tc.ok)
		}
		if ok && got.String() != tc.in {
			t.Errorf("String round trip: %q -> %q", tc.in, got.String())
		}
	}
}

func TestCellSymbols(t *testing.T) {
	want := map[Cell]string{CellEmpty: "-", CellP1: "P", CellP2: "B", CellBlocked: "X"}
	for c, sym := range want {
		if c.Symbol() != sym {
			t.Errorf("%s.Symbol() = %q, want %q", c, c.Symbol(), sym)
		}
	}
}

func TestParseCapturePolicy(t *testing.T) {
	for in, want := range map[string]CapturePolicy{"single": CaptureSingle, "": CaptureSingle, "RUN": CaptureRun, "multi": CaptureRun} {
		got, err := ParseCapturePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseCapturePolicy(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseCapturePolicy("diagonal"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(r *Rules)
	}{
		{"even board", func(r *Rules) { r.BoardSize = 6 }},
		{"too small", func(r *Rules) { r.BoardSize = 1 }},
		{"too large", func(r *Rules) { r.BoardSize = MaxBoardSize + 2 }},
		{"zero hand", func(r *Rules) { r.HandSize = 0 }},
		{"hand overflows board", func(r *Rules) { r.HandSize = 13 }},
		{"threshold not below hand", func(r *Rules) { r.HandSize = 2; r.LossThreshold = 2 }},
		{"unknown policy", func(r *Rules) { r.Capture = 7 }},
	}
	for _, tc := range tests {
		r := DefaultRules()
		tc.mutate(&r)
		if err := r.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
	open := DefaultRules()
	open.CentralBlockade = false
	open.HandSize = 12
	if err := open.Validate(); err != nil {
		t.Errorf("12 pieces each on an open 5x5 board should fit: %v", err)
	}
}

func TestReason(t *testing.T) {
	wrapped := fmt.Errorf("%w: (0,0) is p1", ErrCellOccupied)
	if got := Reason(wrapped); got != "cell_occupied" {
		t.Errorf("Reason = %q, want cell_occupied", got)
	}
	if got := Reason(errors.New("boom")); got != "" {
		t.Errorf("Reason(unrelated) = %q, want empty", got)
	}
}

func TestMoveString(t *testing.T) {
	if got := PlaceAt(P1, Coord{1, 2}).String(); got != "P1 place (1,2)" {
		t.Errorf("PlaceAt String = %q", got)
	}
	if got := SlideFrom(P2, Coord{0, 0}, Coord{0, 3}).String(); got != "P2 slide (0,0)->(0,3)" {
		t.Errorf("SlideFrom String = %q", got)
	}
}

func TestBoardBounds(t *testing.T) {
	b := NewBoard(5)
	if _, err := b.CellAt(Coord{5, 5}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("CellAt(5,5) = %v, want ErrOutOfBounds", err)
	}
	if b.IsEmpty(Coord{-1, 0}) {
		t.Error("off-board square reported empty")
	}
	if b.Center() != (Coord{2, 2}) {
		t.Errorf("Center = %s, want (2,2)", b.Center())
	}
	b.Set(Coord{4, 0}, CellP2)
	rows := b.Rows()
	if rows[4][0] != CellP2 || len(rows) != 5 || len(rows[0]) != 5 {
		t.Errorf("Rows mismatch: %v", rows)
	}
	if b.Count(CellP2) != 1 {
		t.Errorf("Count(p2) = %d", b.Count(CellP2))
	}

	defer func() {
		if recover() == nil {
			t.Error("Set off the board should panic")
		}
	}()
	b.Set(Coord{0, 9}, CellP1)
}
