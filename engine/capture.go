package engine

// ResolveCaptures returns the opposing pieces removed by mover arriving on
// dest. In each orthogonal direction it walks the contiguous run of opposing
// pieces and confirms it only if the next square holds one of mover's pieces.
// Under CaptureSingle only runs of length one qualify. The board is not
// modified.
func ResolveCaptures(b *Board, mover Slot, dest Coord, policy CapturePolicy) []Coord {
	own := mover.Piece()
	opp := mover.Opponent().Piece()

	var captured []Coord
	for _, d := range orthogonal {
		start := len(captured)
		c := dest.step(d)
		for b.InBounds(c) && b.at(c) == opp {
			captured = append(captured, c)
			c = c.step(d)
		}
		run := len(captured) - start
		flanked := run > 0 && b.InBounds(c) && b.at(c) == own
		if !flanked || (policy == CaptureSingle && run != 1) {
			captured = captured[:start]
		}
	}
	return captured
}
