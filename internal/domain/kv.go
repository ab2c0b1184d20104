package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// CollectionKind names one of the two synchronized collections
type CollectionKind string

const (
	CollectionCategories CollectionKind = "categories"
	CollectionExpenses   CollectionKind = "expenses"
)

// Valid reports whether k is a known collection kind
func (k CollectionKind) Valid() bool {
	return k == CollectionCategories || k == CollectionExpenses
}

// CollectionKey returns the key-value store key holding a user's entire collection
func CollectionKey(userID string, kind CollectionKind) string {
	return fmt.Sprintf("user:%s:%s", userID, kind)
}

// KVStore persists whole JSON values by key. Get returns ErrNotFound for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}
