// internal/game/sync_state.go
package game

import "github.com/jason-s-yu/seega/engine"

// ServerSender is the sender name on server notices.
const ServerSender = "Server"

// PieceCounts pairs a per-slot counter.
type PieceCounts struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// MoveView describes the last accepted move.
type MoveView struct {
	Kind     string   `json:"kind"`
	Slot     string   `json:"slot"`
	Origin   *[2]int  `json:"origin,omitempty"` // Absent for placements.
	Dest     [2]int   `json:"destination"`
	Captured [][2]int `json:"captured,omitempty"`
}

// Snapshot is the public view of a match, broadcast after every accepted
// transition. It carries no match ID, so equal positions encode equally.
type Snapshot struct {
	Board       [][]string        `json:"board"`
	Phase       string            `json:"phase"`
	CurrentTurn string            `json:"current_turn"`
	Winner      string            `json:"winner,omitempty"`
	WinReason   string            `json:"win_reason,omitempty"`
	Hand        PieceCounts       `json:"hand"`
	OnBoard     PieceCounts       `json:"on_board"`
	Captured    PieceCounts       `json:"captured"`
	Players     map[string]string `json:"players"`
	Blockade    bool              `json:"blockade"`
	MoveNumber  int               `json:"move_number"`
	LastMove    *MoveView         `json:"last_move,omitempty"`
	Stalled     bool              `json:"stalled"` // The player to move has no legal slide.
	Finished    bool              `json:"finished"`
}

// Notification is a chat line, from a player or the server.
type Notification struct {
	Sender string `json:"sender"`
	Text   string `json:"content"`
}

func pair(c engine.Coord) [2]int { return [2]int{c.Row, c.Col} }

// buildSnapshot renders g and the seat map. The caller holds the match lock.
func buildSnapshot(g *engine.GameState, reg *Registry) Snapshot {
	rows := g.Board.Rows()
	board := make([][]string, len(rows))
	for r, row := range rows {
		board[r] = make([]string, len(row))
		for c, cell := range row {
			board[r][c] = cell.Symbol()
		}
	}

	snap := Snapshot{
		Board:       board,
		Phase:       g.Phase.String(),
		CurrentTurn: g.Turn.String(),
		Winner:      g.Winner.String(),
		WinReason:   g.WinReason.String(),
		Hand:        PieceCounts{P1: g.PiecesInHand(engine.P1), P2: g.PiecesInHand(engine.P2)},
		OnBoard:     PieceCounts{P1: g.PiecesOnBoard(engine.P1), P2: g.PiecesOnBoard(engine.P2)},
		Captured:    PieceCounts{P1: g.PiecesCaptured(engine.P1), P2: g.PiecesCaptured(engine.P2)},
		Players:     make(map[string]string, 2),
		Blockade:    g.Blockade,
		MoveNumber:  int(g.MoveNumber),
		Finished:    g.IsFinished(),
	}
	for slot, name := range reg.Players() {
		snap.Players[slot.String()] = name
	}
	if !snap.Finished {
		snap.Stalled = g.Stalled(g.Turn)
	}

	if lm := g.LastMove; lm.Valid {
		mv := &MoveView{
			Kind: lm.Move.Kind.String(),
			Slot: lm.Move.Slot.String(),
			Dest: pair(lm.Move.To),
		}
		if lm.Move.Kind == engine.MoveSlide {
			from := pair(lm.Move.From)
			mv.Origin = &from
		}
		for _, c := range lm.Captured() {
			mv.Captured = append(mv.Captured, pair(c))
		}
		snap.LastMove = mv
	}
	return snap
}
