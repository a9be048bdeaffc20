// Package sqlite persists challenges in a SQLite database so they survive
// restarts and can be shared by several processes on one host.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS challenges (
	id TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_challenges_expires ON challenges(expires_at);
`

// Store implements the challenge store on top of database/sql.
// expires_at holds unix nanoseconds; 0 means no expiry.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (and creates, if needed) the database at path. Use ":memory:"
// for a throwaway database.
func Open(path string, ttl time.Duration) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Set(ctx context.Context, id, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges (id, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		id, value, s.expiry())
	if err != nil {
		return fmt.Errorf("failed to store challenge %s: %w", id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM challenges WHERE id = ? AND (expires_at = 0 OR expires_at > ?)`,
		id, s.now().UnixNano()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load challenge %s: %w", id, err)
	}
	return value, true, nil
}

// MarkVerified overwrites the value and keeps the expiry.
func (s *Store) MarkVerified(ctx context.Context, id, sentinel string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE challenges SET value = ? WHERE id = ? AND (expires_at = 0 OR expires_at > ?)`,
		sentinel, id, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to mark challenge %s: %w", id, err)
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, id, old, new string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE challenges SET value = ? WHERE id = ? AND value = ? AND (expires_at = 0 OR expires_at > ?)`,
		new, id, old, s.now().UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to swap challenge %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to swap challenge %s: %w", id, err)
	}
	return n == 1, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete challenge %s: %w", id, err)
	}
	return nil
}

// Sweep removes expired rows.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM challenges WHERE expires_at != 0 AND expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep challenges: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) expiry() int64 {
	if s.ttl <= 0 {
		return 0
	}
	return s.now().Add(s.ttl).UnixNano()
}
