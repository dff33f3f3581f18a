// db.go
//
// Storage bootstrap for the 2048 server.
// Responsibilities:
//   - Opening SQLite (default) with safe defaults (WAL, busy timeout, foreign keys,
//     immediate write transactions) or Postgres with pool limits.
//   - Applying embedded migrations for the chosen dialect.
//   - Connecting the optional Redis cache; an unreachable Redis is logged and skipped.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/game2048/internal/config"
	"github.com/robalobadob/game2048/internal/store"
)

// openStore builds the configured Store. db is nil for the memory driver.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, *sql.DB, store.Dialect, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store; games are lost on restart")
		return store.NewMemoryStore(), nil, "", nil
	}

	dialect, err := store.ParseDialect(cfg.StoreDriver)
	if err != nil {
		return nil, nil, "", err
	}
	db, err := openDB(ctx, cfg, dialect)
	if err != nil {
		return nil, nil, "", err
	}
	if err := store.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, nil, "", fmt.Errorf("migrate: %w", err)
	}
	return store.NewSQLStore(db, dialect), db, dialect, nil
}

// openDB opens the database for d and verifies the connection.
func openDB(ctx context.Context, cfg *config.Config, d store.Dialect) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch d {
	case store.SQLite:
		db, err = openSQLite(cfg.DatabaseURL)
	case store.Postgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres")
		}
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			db.SetMaxOpenConns(cfg.DBMaxOpenConns)
			db.SetMaxIdleConns(cfg.DBMaxIdleConns)
			db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMin) * time.Minute)
		}
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	log.Info().Str("driver", string(d)).Msg("database connected")
	return db, nil
}

// openSQLite opens (and creates if missing) a SQLite database file.
// Write transactions take the lock up front so concurrent moves serialize
// instead of failing on lock upgrade.
func openSQLite(dsn string) (*sql.DB, error) {
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "file:")

	// Ensure directory exists for ./data/game2048.db, etc.
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	return db, nil
}

// openRedis connects the cache client. It returns nil when REDIS_URL is
// unset or the server does not answer; the store then runs uncached.
func openRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opts := &redis.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword}
	if strings.Contains(cfg.RedisURL, "://") {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("invalid REDIS_URL, running without cache")
			return nil
		}
		if parsed.Password == "" {
			parsed.Password = cfg.RedisPassword
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("could not connect to redis, running without cache")
		_ = client.Close()
		return nil
	}
	log.Info().Str("addr", opts.Addr).Msg("redis connected")
	return client
}
