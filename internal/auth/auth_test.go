package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/game2048/internal/store"
)

func newUsers(t *testing.T) *Users {
	t.Helper()
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared&_txlock=immediate", t.Name()))
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(context.Background(), db, store.SQLite); err != nil {
		t.Fatal(err)
	}
	return NewUsers(db, store.SQLite)
}

func TestSignupAndLogin(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "  tile_master ", "correct horse")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "tile_master" || u.ID == "" {
		t.Errorf("unexpected user %+v", u)
	}

	if _, err := users.Create(ctx, "TILE_MASTER", "another password"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate err = %v, want ErrUsernameTaken", err)
	}

	got, err := users.Authenticate(ctx, "Tile_Master", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("authenticated %s, want %s", got.ID, u.ID)
	}
	if _, err := users.Authenticate(ctx, "tile_master", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "whatever123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}
	if _, err := users.ByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ByID err = %v", err)
	}
}

func TestValidateSignup(t *testing.T) {
	cases := []struct{ user, pass string }{
		{"ab", "longenough"},
		{"has space", "longenough"},
		{"ok_name", "short"},
		{"abcdefghijklmnopqrstuvwxyz", "longenough"},
	}
	for _, c := range cases {
		if err := validateSignup(c.user, c.pass); !errors.Is(err, ErrInvalidSignup) {
			t.Errorf("validateSignup(%q, %q) = %v", c.user, c.pass, err)
		}
	}
	if err := validateSignup("good_name1", "password1"); err != nil {
		t.Errorf("valid signup rejected: %v", err)
	}
}

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	tok, exp, err := s.Sign(&User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Errorf("expiry too soon: %v", exp)
	}
	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "u1" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := NewSigner("other", time.Hour).Parse(tok); err == nil {
		t.Error("token accepted with the wrong secret")
	}
	expired, _, _ := NewSigner("secret", -time.Minute).Sign(&User{ID: "u1", Username: "alice"})
	if _, err := s.Parse(expired); err == nil {
		t.Error("expired token accepted")
	}
}
