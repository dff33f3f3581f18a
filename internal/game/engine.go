// internal/game/engine.go
//
// Move engine for 2048.
// Responsibilities:
//   - Apply one of the four moves to a board (slide, merge) and report the score earned.
//   - Place random tiles on empty cells.
//   - Win and terminal-state predicates.
//
// Notes:
//   - Every direction is reduced to compactLeft by wrapping it in reversible
//     transforms (reverseRows, transpose). One merge routine serves all four moves.
//   - All transforms are pure: they return a new grid and never mutate their input.
//   - Randomness is injected through Rand (rand.go) so tests can seed it.
package game

type transform func(Board) Board

// moveTable maps each direction onto compactLeft. post is applied in order
// after compaction and undoes pre.
var moveTable = map[Direction]struct{ pre, post []transform }{
	Left:  {},
	Right: {pre: []transform{reverseRows}, post: []transform{reverseRows}},
	Up:    {pre: []transform{transpose}, post: []transform{transpose}},
	Down:  {pre: []transform{transpose, reverseRows}, post: []transform{reverseRows, transpose}},
}

// ApplyMove slides and merges b in direction d.
// b is left untouched; the outcome carries a new board.
func ApplyMove(b Board, d Direction) (MoveOutcome, error) {
	plan, ok := moveTable[d]
	if !ok {
		return MoveOutcome{}, invalidDirection(d)
	}
	if err := b.Validate(); err != nil {
		return MoveOutcome{}, err
	}

	work := b.Clone()
	for _, t := range plan.pre {
		work = t(work)
	}
	work, score, merges := compactLeft(work)
	for _, t := range plan.post {
		work = t(work)
	}
	return MoveOutcome{
		Board:   work,
		Score:   score,
		Merges:  merges,
		Changed: BoardChanged(b, work),
	}, nil
}

// BoardChanged reports whether any cell differs between before and after.
func BoardChanged(before, after Board) bool {
	return !before.Equal(after)
}

// SpawnRandomTile returns a copy of b with one empty cell, chosen uniformly,
// set to 2 (90%) or 4 (10%). A full board is returned unchanged.
func SpawnRandomTile(b Board, rng Rand) Board {
	out := b.Clone()
	empty := out.emptyCells()
	if len(empty) == 0 {
		return out
	}
	cell := empty[rng.IntN(len(empty))]
	v := 2
	if rng.IntN(10) == 0 {
		v = 4
	}
	out[cell[0]][cell[1]] = v
	return out
}

// HasTileAtLeast reports whether any tile is >= value.
// Applied to WinningTile it is the win check. Tiles only grow by doubling
// and Won never resets, so a tile above WinningTile implies the game already
// won; ">=" and "== WinningTile" latch the same games.
func HasTileAtLeast(b Board, value int) bool {
	for _, row := range b {
		for _, v := range row {
			if v >= value {
				return true
			}
		}
	}
	return false
}

// IsMovePossible reports whether some move would change b: an empty cell
// exists, or two orthogonally adjacent cells hold the same value.
func IsMovePossible(b Board) bool {
	n := len(b)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := b[r][c]
			if v == 0 {
				return true
			}
			if c+1 < n && b[r][c+1] == v {
				return true
			}
			if r+1 < n && b[r+1][c] == v {
				return true
			}
		}
	}
	return false
}

// compactLeft slides every row to the left, merging equal neighbours once
// per pass, strictly left to right.
func compactLeft(b Board) (Board, int, int) {
	out := make(Board, len(b))
	score, merges := 0, 0
	for r, row := range b {
		line, s, m := mergeLine(row)
		out[r] = line
		score += s
		merges += m
	}
	return out, score, merges
}

// mergeLine compacts a single row. The result has len(row) cells.
func mergeLine(row []int) ([]int, int, int) {
	tiles := make([]int, 0, len(row))
	for _, v := range row {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	out := make([]int, len(row))
	score, merges, k := 0, 0, 0
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] {
			merged := tiles[i] * 2
			out[k] = merged
			score += merged
			merges++
			i++ // the partner is consumed
		} else {
			out[k] = tiles[i]
		}
		k++
	}
	return out, score, merges
}

// reverseRows mirrors the board left↔right.
func reverseRows(b Board) Board {
	out := make(Board, len(b))
	for r, row := range b {
		n := len(row)
		rev := make([]int, n)
		for c, v := range row {
			rev[n-1-c] = v
		}
		out[r] = rev
	}
	return out
}

// transpose swaps rows and columns. b must be square.
func transpose(b Board) Board {
	n := len(b)
	out := make(Board, n)
	for r := range out {
		out[r] = make([]int, n)
		for c := 0; c < n; c++ {
			out[r][c] = b[c][r]
		}
	}
	return out
}

