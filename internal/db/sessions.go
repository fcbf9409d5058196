package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("record not found")

// SessionRow is a persisted session document
type SessionRow struct {
	ID        string
	State     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetSession loads a session by ID
func (db *DB) GetSession(ctx context.Context, id string) (*SessionRow, error) {
	var row SessionRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, state, created_at, updated_at FROM career_sessions WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.State, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &row, nil
}

// UpsertSession inserts or replaces a session document
func (db *DB) UpsertSession(ctx context.Context, id string, state []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO career_sessions (id, state)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET state = $2, updated_at = NOW()`,
		id, state,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteSession removes a session; it returns ErrNotFound when nothing was deleted
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM career_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSessionsIdleSince removes sessions not updated since cutoff
func (db *DB) DeleteSessionsIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM career_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
