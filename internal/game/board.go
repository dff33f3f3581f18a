package game

import "fmt"

// NewBoard returns an empty n×n board.
func NewBoard(n int) (Board, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d (must be positive)", ErrInvalidBoardSize, n)
	}
	b := make(Board, n)
	for r := range b {
		b[r] = make([]int, n)
	}
	return b, nil
}

// Size is the board's side length.
func (b Board) Size() int { return len(b) }

// Clone returns a deep copy that shares no rows with b.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for r, row := range b {
		out[r] = append([]int(nil), row...)
	}
	return out
}

// Validate checks the board is square and every cell is 0 or a positive
// power of two.
func (b Board) Validate() error {
	n := len(b)
	if n == 0 {
		return corrupt("empty board")
	}
	for r, row := range b {
		if len(row) != n {
			return corrupt("row %d has %d cells, want %d", r, len(row), n)
		}
		for c, v := range row {
			if !isTile(v) {
				return corrupt("cell (%d,%d) holds %d, not a tile", r, c, v)
			}
		}
	}
	return nil
}

// Equal reports whether both boards have the same shape and values.
func (b Board) Equal(o Board) bool {
	if len(b) != len(o) {
		return false
	}
	for r := range b {
		if len(b[r]) != len(o[r]) {
			return false
		}
		for c := range b[r] {
			if b[r][c] != o[r][c] {
				return false
			}
		}
	}
	return true
}

// Tiles counts non-empty cells.
func (b Board) Tiles() int {
	n := 0
	for _, row := range b {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// emptyCells lists [row, col] for every zero cell in row-major order.
func (b Board) emptyCells() [][2]int {
	var out [][2]int
	for r, row := range b {
		for c, v := range row {
			if v == 0 {
				out = append(out, [2]int{r, c})
			}
		}
	}
	return out
}

func isTile(v int) bool {
	return v == 0 || (v > 1 && v&(v-1) == 0)
}
