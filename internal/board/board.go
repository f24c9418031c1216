package board

import "fmt"

// Size is the fixed board dimension. The game is always played on a
// 15x15 grid.
const Size = 15

// Cell holds the owner of a single board cell.
type Cell int8

const (
	Empty Cell = iota
	Seat0
	Seat1
)

// SeatCell converts a seat index (0 or 1) into the cell value that marks
// that seat's stones.
func SeatCell(seat int) Cell {
	if seat == 0 {
		return Seat0
	}
	return Seat1
}

// Seat returns the seat index owning this cell, or -1 for an empty cell.
func (c Cell) Seat() int {
	switch c {
	case Seat0:
		return 0
	case Seat1:
		return 1
	default:
		return -1
	}
}

// Board is a plain value type: copying it copies the whole grid, which
// makes tentative mutations (convert, storm) cheap to roll back.
type Board [Size][Size]Cell

// Stone is an occupied cell.
type Stone struct {
	Row   int  `json:"row"`
	Col   int  `json:"col"`
	Owner Cell `json:"owner"`
}

// InBounds reports whether (row, col) is a valid board coordinate.
func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// Get returns the owner of the cell at (row, col).
func (b *Board) Get(row, col int) Cell {
	return b[row][col]
}

// Set places owner at (row, col).
func (b *Board) Set(row, col int, owner Cell) {
	b[row][col] = owner
}

// Clear empties the cell at (row, col).
func (b *Board) Clear(row, col int) {
	b[row][col] = Empty
}

// StoneCount returns the number of occupied cells.
func (b *Board) StoneCount() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] != Empty {
				n++
			}
		}
	}
	return n
}

// Stones returns every occupied cell in row-major order.
func (b *Board) Stones() []Stone {
	var out []Stone
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] != Empty {
				out = append(out, Stone{Row: r, Col: c, Owner: b[r][c]})
			}
		}
	}
	return out
}

// String renders the board for logs and test failures.
func (b *Board) String() string {
	out := ""
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch b[r][c] {
			case Seat0:
				out += "x"
			case Seat1:
				out += "o"
			default:
				out += "."
			}
		}
		out += "\n"
	}
	return out
}

// Validate checks that every cell holds a legal value. Boards only ever
// mutate through game commands, so this is a test aid rather than a
// runtime guard.
func (b *Board) Validate() error {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if v := b[r][c]; v < Empty || v > Seat1 {
				return fmt.Errorf("cell (%d,%d) holds invalid value %d", r, c, v)
			}
		}
	}
	return nil
}
