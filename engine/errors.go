package engine

import "errors"

// Rejection sentinels. Every rejected request wraps exactly one of these;
// callers match with errors.Is.
var (
	ErrOutOfBounds         = errors.New("out of bounds")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrWrongPhase          = errors.New("wrong phase")
	ErrCellOccupied        = errors.New("cell occupied")
	ErrNoPiecesInHand      = errors.New("no pieces in hand")
	ErrNotOwnPiece         = errors.New("not own piece")
	ErrIllegalPath         = errors.New("illegal path")
	ErrGameAlreadyFinished = errors.New("game already finished")
)

var reasons = []struct {
	err  error
	code string
}{
	{ErrOutOfBounds, "out_of_bounds"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrWrongPhase, "wrong_phase"},
	{ErrCellOccupied, "cell_occupied"},
	{ErrNoPiecesInHand, "no_pieces_in_hand"},
	{ErrNotOwnPiece, "not_own_piece"},
	{ErrIllegalPath, "illegal_path"},
	{ErrGameAlreadyFinished, "game_already_finished"},
}

// Reason returns a stable code for a rejection, or "" if err is not one.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return ""
}
