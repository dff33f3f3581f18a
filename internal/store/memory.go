// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for development/testing, or when durability is not required.
//
// Characteristics:
//   - Stores *game.Game copies keyed by ID; callers never share a pointer
//     with the map, so a caller's mutation cannot leak into stored state.
//   - Concurrency-safe via RWMutex (concurrent reads, exclusive writes).
//     Update holds the write lock for the whole read-modify-write.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/game2048/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex          // guards games map
	games map[string]*game.Game // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*game.Game)}
}

func (m *memory) Create(ctx context.Context, g *game.Game) error {
	if err := g.Board.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == "" {
		g.ID = NewID()
	}
	if _, exists := m.games[g.ID]; exists {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}
	g.Version = 1
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g.Clone(), nil
	}
	return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
}

func (m *memory) Update(ctx context.Context, id string, fn UpdateFunc) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	g := cur.Clone()
	write, err := fn(g)
	if err != nil {
		return nil, err
	}
	if !write {
		return cur.Clone(), nil
	}
	if err := g.Board.Validate(); err != nil {
		return nil, err
	}
	g.Version = cur.Version + 1
	m.games[id] = g.Clone()
	return g, nil
}

func (m *memory) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*game.Game, error) {
	m.mu.RLock()
	out := []*game.Game{}
	for _, g := range m.games {
		if ownerID != "" && g.OwnerID == ownerID {
			out = append(out, g.Clone())
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if n := clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}
