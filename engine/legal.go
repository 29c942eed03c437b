package engine

import "fmt"

// ValidatePlacement reports whether slot may drop a piece on to. It never
// mutates g.
func (g *GameState) ValidatePlacement(slot Slot, to Coord) error {
	if g.IsFinished() {
		return fmt.Errorf("%w: %s already won", ErrGameAlreadyFinished, g.Winner)
	}
	if g.Phase != PhasePlacement {
		return fmt.Errorf("%w: placing during %s", ErrWrongPhase, g.Phase)
	}
	if !slot.Valid() || g.Turn != slot {
		return fmt.Errorf("%w: %s to play", ErrNotYourTurn, g.Turn)
	}
	cell, err := g.Board.CellAt(to)
	if err != nil {
		return err
	}
	if cell != CellEmpty {
		return fmt.Errorf("%w: %s is %s", ErrCellOccupied, to, cell)
	}
	if g.Hand[slot.index()] == 0 {
		return fmt.Errorf("%w: %s", ErrNoPiecesInHand, slot)
	}
	return nil
}

// ValidateSlide reports whether slot may move the piece on from to to. A
// slide runs along a row or column over empty squares only, any distance.
// It never mutates g.
func (g *GameState) ValidateSlide(slot Slot, from, to Coord) error {
	if g.IsFinished() {
		return fmt.Errorf("%w: %s already won", ErrGameAlreadyFinished, g.Winner)
	}
	if g.Phase != PhaseMovement {
		return fmt.Errorf("%w: sliding during %s", ErrWrongPhase, g.Phase)
	}
	if !slot.Valid() || g.Turn != slot {
		return fmt.Errorf("%w: %s to play", ErrNotYourTurn, g.Turn)
	}
	origin, err := g.Board.CellAt(from)
	if err != nil {
		return err
	}
	dest, err := g.Board.CellAt(to)
	if err != nil {
		return err
	}
	if origin != slot.Piece() {
		return fmt.Errorf("%w: %s holds %s", ErrNotOwnPiece, from, origin)
	}
	if dest != CellEmpty {
		return fmt.Errorf("%w: %s is %s", ErrCellOccupied, to, dest)
	}
	if !g.pathClear(from, to) {
		return fmt.Errorf("%w: %s->%s", ErrIllegalPath, from, to)
	}
	return nil
}

// pathClear reports whether from and to share a row or column and every
// square strictly between them is empty.
func (g *GameState) pathClear(from, to Coord) bool {
	dr, dc := sign(to.Row-from.Row), sign(to.Col-from.Col)
	if (dr != 0 && dc != 0) || (dr == 0 && dc == 0) {
		return false
	}
	d := Coord{Row: dr, Col: dc}
	for c := from.step(d); c != to; c = c.step(d) {
		if !g.Board.IsEmpty(c) {
			return false
		}
	}
	return true
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// LegalMoves lists every move slot may make right now. It is empty when the
// match is finished or it is not slot's turn.
func (g *GameState) LegalMoves(slot Slot) []Move {
	if g.IsFinished() || !slot.Valid() || g.Turn != slot {
		return nil
	}
	n := int(g.Board.Size)
	var moves []Move

	switch g.Phase {
	case PhasePlacement:
		if g.Hand[slot.index()] == 0 {
			return nil
		}
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				to := Coord{Row: r, Col: c}
				if g.Board.IsEmpty(to) {
					moves = append(moves, PlaceAt(slot, to))
				}
			}
		}

	case PhaseMovement:
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				from := Coord{Row: r, Col: c}
				if g.Board.at(from).Owner() != slot {
					continue
				}
				for _, d := range orthogonal {
					for to := from.step(d); g.Board.IsEmpty(to); to = to.step(d) {
						moves = append(moves, SlideFrom(slot, from, to))
					}
				}
			}
		}
	}
	return moves
}

// Stalled reports whether slot is to move in the movement phase but has no
// legal slide. No rule resolves this automatically; the player may surrender.
func (g *GameState) Stalled(slot Slot) bool {
	if g.IsFinished() || g.Phase != PhaseMovement || g.Turn != slot {
		return false
	}
	return len(g.LegalMoves(slot)) == 0
}
