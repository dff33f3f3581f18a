package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/game2048/internal/game"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// stallingGet holds Get after the backing read until released, so a write
// can land between a cache miss and its fill.
type stallingGet struct {
	Store
	read    chan struct{}
	release chan struct{}
}

func (s *stallingGet) Get(ctx context.Context, id string) (*game.Game, error) {
	g, err := s.Store.Get(ctx, id)
	s.read <- struct{}{}
	<-s.release
	return g, err
}

func TestRedisCacheSlowFillDoesNotOverwriteNewerWrite(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)

	backing := &stallingGet{Store: NewMemoryStore(), read: make(chan struct{}, 1), release: make(chan struct{})}
	g := newGame("")
	if err := backing.Store.Create(ctx, g); err != nil { // not cached: first Get misses
		t.Fatal(err)
	}
	c := NewRedisCache(backing, client, time.Hour)

	stale := make(chan *game.Game, 1)
	go func() {
		got, err := c.Get(ctx, g.ID)
		if err != nil {
			t.Error(err)
		}
		stale <- got
	}()
	<-backing.read

	updated, err := c.Update(ctx, g.ID, func(g *game.Game) (bool, error) {
		g.Score = 100
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Version != 2 {
		t.Fatalf("version after update = %d, want 2", updated.Version)
	}

	close(backing.release)
	if old := <-stale; old.Score != 0 || old.Version != 1 {
		t.Fatalf("stalled Get = %+v, want the pre-update state", old)
	}

	// The stalled fill ran last but must not replace the newer entry.
	backing.release = make(chan struct{})
	close(backing.release)
	got, err := c.Get(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 100 || got.Version != 2 {
		t.Errorf("cached game = score %d version %d, want score 100 version 2", got.Score, got.Version)
	}
}

func TestRedisCachePutKeepsHighestVersion(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	c := NewRedisCache(NewMemoryStore(), client, time.Minute)

	newer := newGame("")
	newer.ID = "g1"
	newer.Score = 40
	newer.Version = 5
	older := newer.Clone()
	older.Score = 8
	older.Version = 4

	c.put(ctx, newer)
	c.put(ctx, older)

	if v := mr.HGet(cacheKey("g1"), "v"); v != "5" {
		t.Errorf("cached version = %q, want 5", v)
	}
	got, err := c.Get(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 40 {
		t.Errorf("score = %d, want 40", got.Score)
	}
	if ttl := mr.TTL(cacheKey("g1")); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want (0, 1m]", ttl)
	}
}
