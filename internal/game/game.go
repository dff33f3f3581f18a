package game

import (
	"fmt"
	"time"
)

// New builds an in-memory game on an n×n board seeded with two random
// tiles. The store assigns the ID.
func New(n int, rng Rand) (*Game, error) {
	b, err := NewBoard(n)
	if err != nil {
		return nil, err
	}
	b = SpawnRandomTile(b, rng)
	b = SpawnRandomTile(b, rng)
	now := time.Now().UTC()
	return &Game{Board: b, CreatedAt: now, UpdatedAt: now}, nil
}

// Move applies d to the game.
//
// Rules:
//   - A finished game is left untouched and the outcome reports no change.
//   - A move that changes nothing is rejected silently: no score, no tile, no flag update.
//   - An effective move adds its score, spawns one tile, latches Won on
//     reaching WinningTile and sets GameOver when no move remains.
func (g *Game) Move(d Direction, rng Rand) (MoveOutcome, error) {
	if !d.Valid() {
		return MoveOutcome{}, invalidDirection(d)
	}
	if g.GameOver {
		return MoveOutcome{Board: g.Board.Clone()}, nil
	}

	out, err := ApplyMove(g.Board, d)
	if err != nil {
		return MoveOutcome{}, fmt.Errorf("game %s: %w", g.ID, err)
	}
	if !out.Changed {
		return out, nil
	}

	g.Score += out.Score
	g.Board = SpawnRandomTile(out.Board, rng)
	if !g.Won && HasTileAtLeast(g.Board, WinningTile) {
		g.Won = true
	}
	if !IsMovePossible(g.Board) {
		g.GameOver = true
	}
	g.UpdatedAt = time.Now().UTC()
	return out, nil
}

// Status reports where the game sits in its state machine.
func (g *Game) Status() Status {
	switch {
	case g.GameOver:
		return StatusOver
	case g.Won:
		return StatusWon
	default:
		return StatusInProgress
	}
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	c := *g
	c.Board = g.Board.Clone()
	return &c
}
