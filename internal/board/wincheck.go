package board

// winLength is the run length required for a win.
const winLength = 5

// directions are the four canonical scan lines: horizontal, vertical and
// both diagonals. Opposite directions are covered by scanning the window
// from -4 to +4 around the pivot.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// CheckLine reports whether a run of five or more stones owned by owner
// passes through (row, col). Only cells within 4 of the pivot can be part
// of such a run, so each direction scans a bounded 9-cell window.
func CheckLine(b *Board, row, col int, owner Cell) bool {
	if owner == Empty {
		return false
	}
	for _, d := range directions {
		run := 0
		for i := -(winLength - 1); i <= winLength-1; i++ {
			r := row + i*d[0]
			c := col + i*d[1]
			if !InBounds(r, c) || b[r][c] != owner {
				run = 0
				continue
			}
			run++
			if run >= winLength {
				return true
			}
		}
	}
	return false
}
