package engine

import "fmt"

// checkWinner ends the match when a player's on-board count has fallen to
// the loss threshold. Only meaningful in the movement phase; during
// placement the counts start at zero.
func (g *GameState) checkWinner() {
	if g.IsFinished() || g.Phase != PhaseMovement {
		return
	}
	threshold := g.Rules.LossThreshold
	switch {
	case g.OnBoard[P1.index()] <= threshold:
		g.declareWinner(P2, WinCaptures)
	case g.OnBoard[P2.index()] <= threshold:
		g.declareWinner(P1, WinCaptures)
	}
}

// Surrender concedes the match for slot; the opponent wins immediately,
// whatever the board position.
func (g *GameState) Surrender(slot Slot) error {
	if g.IsFinished() {
		return fmt.Errorf("%w: %s already won", ErrGameAlreadyFinished, g.Winner)
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: no such slot %d", ErrNotYourTurn, uint8(slot))
	}
	g.declareWinner(slot.Opponent(), WinSurrender)
	return nil
}

// Forfeit awards the match to winner because the other seat was vacated.
func (g *GameState) Forfeit(winner Slot) error {
	if g.IsFinished() {
		return fmt.Errorf("%w: %s already won", ErrGameAlreadyFinished, g.Winner)
	}
	if !winner.Valid() {
		return fmt.Errorf("%w: no such slot %d", ErrNotYourTurn, uint8(winner))
	}
	g.declareWinner(winner, WinForfeit)
	return nil
}

func (g *GameState) declareWinner(winner Slot, reason WinReason) {
	if g.IsFinished() {
		panic(fmt.Sprintf("engine: winner %s declared twice (already %s)", winner, g.Winner))
	}
	g.Winner = winner
	g.WinReason = reason
}
