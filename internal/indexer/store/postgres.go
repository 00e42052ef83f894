package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/resilience"
)

const schema = `CREATE TABLE IF NOT EXISTS word_snapshots (
    name     TEXT PRIMARY KEY,
    data     BYTEA NOT NULL,
    saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps named snapshots in the word_snapshots table, one row
// per name.
type PostgresStore struct {
	db    *sql.DB
	name  string
	retry resilience.RetryConfig
}

func NewPostgresStore(db *sql.DB, name string, retry resilience.RetryConfig) *PostgresStore {
	return &PostgresStore{db: db, name: name, retry: retry}
}

func (s *PostgresStore) Name() string {
	return "postgres:" + s.name
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating word_snapshots table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := resilience.Retry(ctx, "postgres snapshot load", s.retry, func(ctx context.Context) error {
		err := s.db.QueryRowContext(ctx,
			`SELECT data FROM word_snapshots WHERE name = $1`,
			s.name,
		).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return resilience.Permanent(fmt.Errorf("snapshot %q: %w", s.name, apperrors.ErrSnapshotNotFound))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot from postgres: %w", err)
	}
	return data, nil
}

func (s *PostgresStore) Save(ctx context.Context, data []byte) error {
	err := resilience.Retry(ctx, "postgres snapshot save", s.retry, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO word_snapshots (name, data, saved_at) VALUES ($1, $2, NOW())
			 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, saved_at = EXCLUDED.saved_at`,
			s.name, data,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving snapshot to postgres: %w", err)
	}
	return nil
}
