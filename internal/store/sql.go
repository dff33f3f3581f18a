// internal/store/sql.go
//
// database/sql implementation of Store, shared by SQLite and PostgreSQL.
//
// Boards are stored in the row-major text format from game.Encode through
// game.Board's Valuer/Scanner, so a row that fails to decode surfaces as
// game.ErrCorruptBoard instead of a default board.
//
// Update serialization:
//   - PostgreSQL: SELECT ... FOR UPDATE inside the transaction.
//   - SQLite: the DSN must set _txlock=immediate so BEGIN takes the write
//     lock up front (see openDB in the main package).

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/game2048/internal/game"
)

const gameColumns = `id, owner_id, board, score, game_over, won, created_at, updated_at, version`

type sqlStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open, migrated database.
func NewSQLStore(db *sql.DB, d Dialect) Store {
	return &sqlStore{db: db, dialect: d}
}

func (s *sqlStore) Create(ctx context.Context, g *game.Game) error {
	if err := g.Board.Validate(); err != nil {
		return err
	}
	if g.ID == "" {
		g.ID = NewID()
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}
	g.Version = 1
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
        INSERT INTO games (id, owner_id, board_size, board, score, game_over, won, created_at, updated_at, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, nullString(g.OwnerID), g.Board.Size(), g.Board, g.Score, g.GameOver, g.Won, g.CreatedAt, g.UpdatedAt, g.Version,
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+gameColumns+` FROM games WHERE id=?`), id)
	return scanGame(row, id)
}

func (s *sqlStore) Update(ctx context.Context, id string, fn UpdateFunc) (*game.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT ` + gameColumns + ` FROM games WHERE id=?`
	if s.dialect == Postgres {
		q += ` FOR UPDATE`
	}
	g, err := scanGame(tx.QueryRowContext(ctx, s.dialect.Rebind(q), id), id)
	if err != nil {
		return nil, err
	}
	snapshot := g.Clone()

	write, err := fn(g)
	if err != nil {
		return nil, err
	}
	if !write {
		return snapshot, nil
	}
	if err := g.Board.Validate(); err != nil {
		return nil, err
	}
	g.Version = snapshot.Version + 1

	if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`
        UPDATE games SET board=?, score=?, game_over=?, won=?, updated_at=?, version=?
        WHERE id=?`),
		g.Board, g.Score, g.GameOver, g.Won, g.UpdatedAt, g.Version, id,
	); err != nil {
		return nil, fmt.Errorf("update game %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit game %s: %w", id, err)
	}
	return g, nil
}

func (s *sqlStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*game.Game, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
        SELECT `+gameColumns+`
        FROM games
        WHERE owner_id=?
        ORDER BY updated_at DESC
        LIMIT ?`), ownerID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*game.Game{}
	for rows.Next() {
		g, err := scanGame(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner, id string) (*game.Game, error) {
	var (
		g     game.Game
		owner sql.NullString
	)
	err := row.Scan(&g.ID, &owner, &g.Board, &g.Score, &g.GameOver, &g.Won, &g.CreatedAt, &g.UpdatedAt, &g.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan game %s: %w", id, err)
	}
	g.OwnerID = owner.String
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return &g, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
