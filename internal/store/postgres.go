package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each table as one jsonb row in a `tables`
// relation (see db/migrations). It deliberately stays a key-value
// store: the domain operations own all invariants, the database only
// gives them durability.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM tables WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO tables (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM tables WHERE key = $1`, key)
	return err
}

var _ TableStore = (*PostgresStore)(nil)
