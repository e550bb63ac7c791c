package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a PostgreSQL connection pool and verifies connectivity.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	return pool, nil
}

// PgStore keeps slots in the finance_slots table, one row per key. It is the
// shared remote copy that devices reconcile against.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore on an existing pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM finance_slots WHERE key = $1`, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: load slot %s: %w", key, err)
	}
	return data, nil
}

func (s *PgStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO finance_slots (key, data, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("blob: save slot %s: %w", key, err)
	}
	return nil
}
