package engine

import "fmt"

// MaxBoardSize is the largest supported board edge.
const MaxBoardSize = 9

// Board is a square grid stored row-major in a fixed array so that GameState
// stays a flat, copyable value.
type Board struct {
	Size  uint8
	Cells [MaxBoardSize * MaxBoardSize]Cell
}

// NewBoard returns an empty board of the given edge length.
func NewBoard(size uint8) Board {
	if size == 0 || size > MaxBoardSize {
		panic(fmt.Sprintf("engine: board size %d outside [1,%d]", size, MaxBoardSize))
	}
	return Board{Size: size}
}

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c Coord) bool {
	n := int(b.Size)
	return c.Row >= 0 && c.Row < n && c.Col >= 0 && c.Col < n
}

// CellAt returns the content of c, or ErrOutOfBounds.
func (b *Board) CellAt(c Coord) (Cell, error) {
	if !b.InBounds(c) {
		return CellEmpty, fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, c, b.Size, b.Size)
	}
	return b.at(c), nil
}

// IsEmpty reports whether c is on the board and holds nothing.
func (b *Board) IsEmpty(c Coord) bool {
	return b.InBounds(c) && b.at(c) == CellEmpty
}

// Center returns the fixed (N/2, N/2) square.
func (b *Board) Center() Coord {
	mid := int(b.Size) / 2
	return Coord{Row: mid, Col: mid}
}

// Set writes a single cell. Writing off the board is a programming error.
func (b *Board) Set(c Coord, cell Cell) {
	if !b.InBounds(c) {
		panic(fmt.Sprintf("engine: Set %s outside %dx%d board", c, b.Size, b.Size))
	}
	b.Cells[c.Row*int(b.Size)+c.Col] = cell
}

// Count returns how many squares hold cell.
func (b *Board) Count(cell Cell) int {
	n := int(b.Size) * int(b.Size)
	count := 0
	for i := 0; i < n; i++ {
		if b.Cells[i] == cell {
			count++
		}
	}
	return count
}

// Rows returns the board as a fresh 2-D slice (allocates).
func (b *Board) Rows() [][]Cell {
	n := int(b.Size)
	rows := make([][]Cell, n)
	for r := 0; r < n; r++ {
		rows[r] = make([]Cell, n)
		copy(rows[r], b.Cells[r*n:(r+1)*n])
	}
	return rows
}

func (b *Board) at(c Coord) Cell { return b.Cells[c.Row*int(b.Size)+c.Col] }
