package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBoardSize is returned when a game is requested with a
	// non-positive (or over the limit) board size.
	ErrInvalidBoardSize = errors.New("invalid board size")

	// ErrInvalidDirection is returned for anything outside UP/DOWN/LEFT/RIGHT.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrCorruptBoard marks a board that is ragged, non-square or holds a
	// value that is not a tile. Persisted state failing to decode wraps it.
	ErrCorruptBoard = errors.New("corrupt board")
)

func invalidDirection(v any) error {
	return fmt.Errorf("%w: %q (want one of UP, DOWN, LEFT, RIGHT)", ErrInvalidDirection, fmt.Sprint(v))
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptBoard, fmt.Sprintf(format, args...))
}
