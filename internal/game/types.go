// internal/game/types.go
//
// Core type definitions for the 2048 game engine.
// Defines:
//   - Board: square grid of tiles (0 = empty, otherwise a power of two).
//   - Direction: the four legal moves.
//   - Game: persisted state for a single game.
//   - MoveOutcome: ephemeral result of one engine invocation.

package game

import (
	"strings"
	"time"
)

// WinningTile is the tile value that latches Game.Won.
const WinningTile = 2048

// Board is an N×N grid of tiles, indexed [row][col].
type Board [][]int

// Direction is one of the four slide directions.
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Directions lists every valid direction.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection maps user input (case-insensitive, surrounding spaces
// ignored) to a Direction. Anything else yields ErrInvalidDirection.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", invalidDirection(s)
	}
	return d, nil
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Status is a coarse view of the game's state machine.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won" // reached WinningTile, still playable
	StatusOver       Status = "over"
)

// Game holds the state of a single 2048 game.
type Game struct {
	ID        string    `json:"id"`                // Assigned by the store on first save.
	OwnerID   string    `json:"ownerId,omitempty"` // Empty for anonymous games.
	Board     Board     `json:"board"`
	Score     int       `json:"score"`
	GameOver  bool      `json:"gameOver"`
	Won       bool      `json:"won"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int64     `json:"version"` // 1 on create, +1 per persisted write.
}

// MoveOutcome is what the engine produces for one move.
type MoveOutcome struct {
	Board   Board // Always a fresh grid; never aliases the input.
	Score   int   // Sum of all merged tile values.
	Merges  int   // Number of pairwise merges.
	Changed bool  // True iff Board differs from the input.
}
