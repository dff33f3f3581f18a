package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "DATABASE_URL", "MAX_BOARD_SIZE", "DEFAULT_BOARD_SIZE", "NODE_ENV", "CACHE_TTL_SECONDS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.Port != "8080" || c.StoreDriver != "sqlite" || c.DatabaseURL != "./data/game2048.db" {
		t.Errorf("unexpected defaults %+v", c)
	}
	if c.DefaultBoardSize != 4 || c.MaxBoardSize != 16 || c.Production {
		t.Errorf("unexpected game defaults %+v", c)
	}
	if c.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v", c.CacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAX_BOARD_SIZE", "10")
	t.Setenv("NODE_ENV", "production")
	c := Load()
	if c.StoreDriver != "postgres" || c.DatabaseURL != "" {
		t.Errorf("driver/dsn = %q/%q", c.StoreDriver, c.DatabaseURL)
	}
	if c.MaxBoardSize != 10 || !c.Production {
		t.Errorf("overrides not applied: %+v", c)
	}
}

func TestValidateBoardSizes(t *testing.T) {
	cases := []struct {
		def, max int
		ok       bool
	}{
		{4, 16, true},
		{1, 16, true},
		{16, 16, true},
		{20, 0, true},
		{0, 16, false},
		{-3, 16, false},
		{17, 16, false},
	}
	for _, tc := range cases {
		err := (&Config{DefaultBoardSize: tc.def, MaxBoardSize: tc.max}).Validate()
		if (err == nil) != tc.ok {
			t.Errorf("Validate(default=%d, max=%d) = %v, want ok=%v", tc.def, tc.max, err, tc.ok)
		}
	}
}

func TestGetEnvAsIntFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	if got := GetEnvAsInt("SOME_INT", 7); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
	t.Setenv("SOME_INT", "12")
	if got := GetEnvAsInt("SOME_INT", 7); got != 12 {
		t.Errorf("got %d, want 12", got)
	}
}
