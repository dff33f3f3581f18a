// internal/config/config.go
//
// Environment-driven configuration for the 2048 server.
// main loads .env (godotenv) before calling Load, so values may come from
// either the process environment or the file.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "json" (default) or "pretty"

	StoreDriver          string // memory | sqlite | postgres
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string // empty disables the cache
	RedisPassword string
	CacheTTL      time.Duration

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool

	DefaultBoardSize int
	MaxBoardSize     int
	RequestTimeout   time.Duration
}

// Load reads Config from the environment, applying defaults.
func Load() *Config {
	driver := strings.ToLower(GetEnv("STORE_DRIVER", "sqlite"))
	defaultDSN := ""
	if driver == "sqlite" || driver == "sqlite3" {
		defaultDSN = "./data/game2048.db"
	}

	return &Config{
		Port:      GetEnv("PORT", "8080"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "json"),

		StoreDriver:          driver,
		DatabaseURL:          GetEnv("DATABASE_URL", defaultDSN),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisURL:      GetEnv("REDIS_URL", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(GetEnvAsInt("CACHE_TTL_SECONDS", 3600)) * time.Second,

		JWTSecret:      GetEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: GetEnvAsInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     GetEnv("COOKIE_NAME", "game2048_token"),
		ClientOrigin:   GetEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     GetEnv("NODE_ENV", "") == "production",

		DefaultBoardSize: GetEnvAsInt("DEFAULT_BOARD_SIZE", 4),
		MaxBoardSize:     GetEnvAsInt("MAX_BOARD_SIZE", 16),
		RequestTimeout:   time.Duration(GetEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

// Validate checks the settings main cannot start with. A 1×1 board is a
// legal (if short) game; MAX_BOARD_SIZE <= 0 means no upper bound.
func (c *Config) Validate() error {
	if c.DefaultBoardSize < 1 {
		return fmt.Errorf("DEFAULT_BOARD_SIZE must be at least 1, got %d", c.DefaultBoardSize)
	}
	if c.MaxBoardSize > 0 && c.DefaultBoardSize > c.MaxBoardSize {
		return fmt.Errorf("DEFAULT_BOARD_SIZE %d exceeds MAX_BOARD_SIZE %d", c.DefaultBoardSize, c.MaxBoardSize)
	}
	return nil
}

// GetEnv returns the value of key or def if unset/empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvAsInt parses key as an int, falling back to def on absence or error.
func GetEnvAsInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Int("default", def).Msg("invalid integer in environment, using default")
		return def
	}
	return v
}
