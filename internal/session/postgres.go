package session

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/career-agent/internal/db"
)

// PostgresStore keeps each session as a JSONB row.
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore connects to databaseURL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	conn, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := conn.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &PostgresStore{db: conn}, nil
}

// Get loads a session.
func (p *PostgresStore) Get(ctx context.Context, id string) (*State, error) {
	row, err := p.db.GetSession(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s, err := decode(row.State)
	if err != nil {
		return nil, err
	}
	s.UpdatedAt = row.UpdatedAt
	return s, nil
}

// Save upserts a session.
func (p *PostgresStore) Save(ctx context.Context, s *State) error {
	s.UpdatedAt = time.Now()
	data, err := encode(s)
	if err != nil {
		return err
	}
	return p.db.UpsertSession(ctx, s.ID, data)
}

// Delete removes a session.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := p.db.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// PurgeIdle deletes rows not updated within maxIdle.
func (p *PostgresStore) PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	n, err := p.db.DeleteSessionsIdleSince(ctx, time.Now().Add(-maxIdle))
	return int(n), err
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	p.db.Close()
	return nil
}
