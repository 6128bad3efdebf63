package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/simcheck/internal/db"
)

// SQLStore keeps the entries of one browser session in SQLite. Each
// browser is identified by an opaque id carried in a cookie.
type SQLStore struct {
	db *db.DB
	id string
}

// NewID returns a fresh opaque browser session id.
func NewID() string {
	return uuid.NewString()
}

// NewSQLStore returns the Store of browser session id. The session row is
// created on the first Set.
func NewSQLStore(database *db.DB, id string) *SQLStore {
	return &SQLStore{db: database, id: id}
}

// ID returns the browser session id.
func (s *SQLStore) ID() string { return s.id }

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM web_session_values WHERE session_id = ? AND key = ?`,
		s.id, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying session value: %w", err)
	}
	return value, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO web_sessions (id) VALUES (?)
		ON CONFLICT(id) DO UPDATE SET last_seen = datetime('now')`, s.id); err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO web_session_values (session_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		s.id, key, value); err != nil {
		return fmt.Errorf("upserting session value: %w", err)
	}

	return tx.Commit()
}

// Delete implements Store. The session row is removed once it holds no
// values.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM web_session_values WHERE session_id = ? AND key = ?`, s.id, key); err != nil {
		return fmt.Errorf("deleting session value: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM web_sessions WHERE id = ?
		AND NOT EXISTS (SELECT 1 FROM web_session_values WHERE session_id = ?)`, s.id, s.id); err != nil {
		return fmt.Errorf("deleting empty session: %w", err)
	}
	return nil
}

// Touch marks the session as seen now.
func (s *SQLStore) Touch(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE web_sessions SET last_seen = datetime('now') WHERE id = ?`, s.id); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// PurgeIdle removes browser sessions not seen for longer than maxAge and
// returns how many were removed.
func PurgeIdle(ctx context.Context, database *db.DB, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format("2006-01-02 15:04:05")
	res, err := database.ExecContext(ctx, `DELETE FROM web_sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged sessions: %w", err)
	}
	return n, nil
}
