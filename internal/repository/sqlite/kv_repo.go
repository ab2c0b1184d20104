package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dafibh/budget-ledger/internal/domain"
)

const (
	getValueQuery = `SELECT value FROM kv_store WHERE key = ?`
	setValueQuery = `
INSERT INTO kv_store (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// KVRepository implements domain.KVStore on an embedded SQLite database
type KVRepository struct {
	db *sql.DB
}

var _ domain.KVStore = (*KVRepository)(nil)

// NewKVRepository opens (creating if needed) the database at dbPath and migrates it
func NewKVRepository(dbPath string) (*KVRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time avoids SQLITE_BUSY under concurrent saves
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &KVRepository{db: db}, nil
}

// Close closes the underlying database
func (r *KVRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get retrieves the JSON value stored under key
func (r *KVRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := r.db.QueryRowContext(ctx, getValueQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// Set stores value under key, replacing any previous value
func (r *KVRepository) Set(ctx context.Context, key string, value json.RawMessage) error {
	if _, err := r.db.ExecContext(ctx, setValueQuery, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
