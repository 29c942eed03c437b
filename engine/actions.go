package engine

import "fmt"

// Apply validates and applies a move. On error the state is unchanged.
func (g *GameState) Apply(m Move) error {
	switch m.Kind {
	case MovePlace:
		return g.Place(m.Slot, m.To)
	case MoveSlide:
		_, err := g.Slide(m.Slot, m.From, m.To)
		return err
	}
	return fmt.Errorf("unhandled move kind %d", m.Kind)
}

// Place drops one of slot's pieces on to. Each player places twice before
// the turn passes; when both hands are empty the movement phase begins.
func (g *GameState) Place(slot Slot, to Coord) error {
	if err := g.ValidatePlacement(slot, to); err != nil {
		return err
	}
	i := slot.index()

	g.Board.Set(to, slot.Piece())
	decrement(&g.Hand[i], "hand")
	g.OnBoard[i]++
	g.PlacementsThisTurn++
	g.MoveNumber++
	g.recordLastMove(PlaceAt(slot, to), nil)

	switch {
	case g.Hand[0] == 0 && g.Hand[1] == 0:
		g.startMovement()
	case g.PlacementsThisTurn >= PlacementsPerTurn || g.Hand[i] == 0:
		// An empty hand ends the turn early so the opponent is never stuck
		// waiting on a player who cannot place.
		g.passTurn()
	}

	g.mustHoldInvariants()
	return nil
}

// Slide moves slot's piece from one square to another and resolves
// captures. It returns the removed opposing pieces.
func (g *GameState) Slide(slot Slot, from, to Coord) ([]Coord, error) {
	if err := g.ValidateSlide(slot, from, to); err != nil {
		return nil, err
	}
	i := slot.index()
	opp := slot.Opponent().index()

	g.Board.Set(from, CellEmpty)
	g.Board.Set(to, slot.Piece())

	captured := ResolveCaptures(&g.Board, slot, to, g.Rules.Capture)
	for _, c := range captured {
		g.Board.Set(c, CellEmpty)
		decrement(&g.OnBoard[opp], "pieces on board")
		g.Captured[i]++
	}
	g.MoveNumber++
	g.recordLastMove(SlideFrom(slot, from, to), captured)

	g.checkWinner()
	if !g.IsFinished() && (len(captured) == 0 || !g.Rules.ExtraMoveOnCapture) {
		g.passTurn()
	}

	g.mustHoldInvariants()
	return captured, nil
}

// startMovement ends the placement phase and lifts the central blockade.
// The player after the last placer moves first.
func (g *GameState) startMovement() {
	g.Phase = PhaseMovement
	if g.Blockade {
		g.Board.Set(g.Board.Center(), CellEmpty)
		g.Blockade = false
	}
	g.passTurn()
}

// passTurn hands the move to the opponent and resets the placement counter.
func (g *GameState) passTurn() {
	g.Turn = g.Turn.Opponent()
	g.PlacementsThisTurn = 0
}

func (g *GameState) recordLastMove(m Move, captured []Coord) {
	g.LastMove = LastMoveInfo{Valid: true, Move: m}
	for _, c := range captured {
		g.LastMove.Captures[g.LastMove.NumCaptures] = c
		g.LastMove.NumCaptures++
	}
}
