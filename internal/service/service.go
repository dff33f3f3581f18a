// internal/service/service.go
//
// Game service: the layer between transport and storage.
// Responsibilities:
//   - Create games (validate size, seed two tiles, persist).
//   - Fetch games by ID.
//   - Apply moves as an atomic read-modify-write through Store.Update.
//   - Notify live subscribers after every effective move.

package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/game2048/internal/game"
	"github.com/robalobadob/game2048/internal/store"
)

// Notifier receives the new state of a game after an effective move.
type Notifier interface {
	Publish(g *game.Game)
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Rand         game.Rand // random source for tile placement; wrapped with game.LockedRand
	Notifier     Notifier  // optional
	MaxBoardSize int       // 0 = unlimited
}

// Service implements the game operations exposed over HTTP.
type Service struct {
	store    store.Store
	rng      game.Rand
	notifier Notifier
	maxSize  int
}

// New builds a Service over st.
func New(st store.Store, opts Options) *Service {
	rng := opts.Rand
	if rng == nil {
		rng = game.DefaultRand
	}
	return &Service{
		store:    st,
		rng:      game.LockedRand(rng),
		notifier: opts.Notifier,
		maxSize:  opts.MaxBoardSize,
	}
}

// NewGame creates and persists a size×size game. ownerID may be empty.
func (s *Service) NewGame(ctx context.Context, size int, ownerID string) (*game.Game, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, fmt.Errorf("%w: %d (maximum is %d)", game.ErrInvalidBoardSize, size, s.maxSize)
	}
	g, err := game.New(size, s.rng)
	if err != nil {
		return nil, err
	}
	g.OwnerID = ownerID
	if err := s.store.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("save game: %w", err)
	}
	log.Debug().Str("gameId", g.ID).Int("size", size).Msg("game created")
	return g, nil
}

// Game returns the stored game or store.ErrNotFound.
func (s *Service) Game(ctx context.Context, id string) (*game.Game, error) {
	return s.store.Get(ctx, id)
}

// Move applies d to the game with the given ID and returns its new state.
// Finished games and moves that change nothing return the stored state
// without a write.
func (s *Service) Move(ctx context.Context, id string, d game.Direction) (*game.Game, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", game.ErrInvalidDirection, string(d))
	}

	var outcome game.MoveOutcome
	g, err := s.store.Update(ctx, id, func(g *game.Game) (bool, error) {
		out, err := g.Move(d, s.rng)
		if err != nil {
			return false, err
		}
		outcome = out
		return out.Changed, nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Changed {
		log.Debug().
			Str("gameId", id).
			Str("direction", string(d)).
			Int("gained", outcome.Score).
			Int("score", g.Score).
			Bool("won", g.Won).
			Bool("gameOver", g.GameOver).
			Msg("move applied")
		if s.notifier != nil {
			s.notifier.Publish(g.Clone())
		}
	}
	return g, nil
}

// GamesByOwner lists the owner's most recent games.
func (s *Service) GamesByOwner(ctx context.Context, ownerID string, limit int) ([]*game.Game, error) {
	return s.store.ListByOwner(ctx, ownerID, limit)
}
