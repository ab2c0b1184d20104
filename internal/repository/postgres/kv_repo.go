package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dafibh/budget-ledger/internal/domain"
)

const (
	getValueQuery = `SELECT value FROM kv_store WHERE key = $1`
	setValueQuery = `
INSERT INTO kv_store (key, value, updated_at)
VALUES ($1, $2::jsonb, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// KVRepository implements domain.KVStore using PostgreSQL
type KVRepository struct {
	pool *pgxpool.Pool
}

var _ domain.KVStore = (*KVRepository)(nil)

// NewKVRepository creates a new KVRepository
func NewKVRepository(pool *pgxpool.Pool) *KVRepository {
	return &KVRepository{pool: pool}
}

// Get retrieves the JSON value stored under key
func (r *KVRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, getValueQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(value), nil
}

// Set stores value under key, replacing any previous value
func (r *KVRepository) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := r.pool.Exec(ctx, setValueQuery, key, string(value))
	return err
}
