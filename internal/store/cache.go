package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/game2048/internal/game"
)

// RedisCache is a read-through, write-through cache in front of another
// Store. Redis failures are logged and fall back to the backing store; the
// backing store stays the source of truth and the only place Update locks.
//
// Entries are hashes of {v: Game.Version, data: JSON}. Every fill goes
// through putScript, which never replaces an entry with a lower version, so
// a slow read-through fill cannot clobber a newer write.
type RedisCache struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache decorates next with a Redis cache of game records.
func NewRedisCache(next Store, client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{next: next, client: client, ttl: ttl}
}

func cacheKey(id string) string { return "game2048:game:" + id }

// KEYS[1] entry, ARGV[1] version, ARGV[2] JSON, ARGV[3] ttl in ms (0 = none).
var putScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

func (c *RedisCache) Create(ctx context.Context, g *game.Game) error {
	if err := c.next.Create(ctx, g); err != nil {
		return err
	}
	c.put(ctx, g)
	return nil
}

func (c *RedisCache) Get(ctx context.Context, id string) (*game.Game, error) {
	raw, err := c.client.HGet(ctx, cacheKey(id), "data").Bytes()
	switch {
	case err == nil:
		var g game.Game
		if err := json.Unmarshal(raw, &g); err == nil {
			return &g, nil
		}
		// A bad entry is dropped and reloaded from the backing store.
		log.Warn().Err(err).Str("gameId", id).Msg("discarding corrupt cache entry")
		c.evict(ctx, id)
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Str("gameId", id).Msg("redis get")
	}

	g, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, g)
	return g, nil
}

func (c *RedisCache) Update(ctx context.Context, id string, fn UpdateFunc) (*game.Game, error) {
	g, err := c.next.Update(ctx, id, fn)
	if err != nil {
		// The record may have changed under a failed write; drop it.
		c.evict(ctx, id)
		return nil, err
	}
	c.put(ctx, g)
	return g, nil
}

// ListByOwner is not cached.
func (c *RedisCache) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*game.Game, error) {
	return c.next.ListByOwner(ctx, ownerID, limit)
}

func (c *RedisCache) put(ctx context.Context, g *game.Game) {
	b, err := json.Marshal(g)
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("encode cache entry")
		return
	}
	err = putScript.Run(ctx, c.client, []string{cacheKey(g.ID)}, g.Version, b, c.ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("redis put")
	}
}

func (c *RedisCache) evict(ctx context.Context, id string) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("redis del")
	}
}
