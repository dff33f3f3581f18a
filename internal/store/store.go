// internal/store/store.go
//
// Persistence interface for 2048 games plus the shared helpers used by
// every implementation.
//
// Implementations:
//   - memory:  map guarded by a mutex (dev/tests; state lost on restart).
//   - sqlite:  database/sql + mattn/go-sqlite3 (default).
//   - postgres: database/sql + lib/pq.
//   - RedisCache: read-through cache decorating any of the above.

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/robalobadob/game2048/internal/game"
)

// ErrNotFound is returned when no game has the requested ID.
var ErrNotFound = errors.New("not found")

// UpdateFunc mutates g in place and reports whether the result must be
// written back. Returning false skips the write.
type UpdateFunc func(g *game.Game) (bool, error)

// Store defines the persistence interface for games.
type Store interface {
	// Create persists a new game, assigning g.ID when empty.
	Create(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn against the current record and persists the result.
	// Concurrent Updates of the same ID are serialized, so fn always sees
	// the latest committed state.
	Update(ctx context.Context, id string, fn UpdateFunc) (*game.Game, error)

	// ListByOwner returns the owner's most recently updated games.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*game.Game, error)
}

// NewID returns an opaque identifier for a game or user.
func NewID() string { return uuid.NewString() }

const defaultListLimit = 50

func clampLimit(n int) int {
	if n <= 0 || n > defaultListLimit {
		return defaultListLimit
	}
	return n
}
