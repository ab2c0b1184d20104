package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dafibh/budget-ledger/internal/domain"
)

func newTestRepo(t *testing.T) (*KVRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	repo, err := NewKVRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func TestKVRepository_GetMissing(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "user:nobody:categories")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKVRepository_SetReplacesWholeValue(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	key := domain.CollectionKey("u-1", domain.CollectionExpenses)

	require.NoError(t, repo.Set(ctx, key, json.RawMessage(`[{"id":"a"},{"id":"b"}]`)))
	require.NoError(t, repo.Set(ctx, key, json.RawMessage(`[]`)))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))
}

func TestKVRepository_KeysAreIsolated(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, domain.CollectionKey("u-1", domain.CollectionCategories), json.RawMessage(`[{"id":"1"}]`)))
	require.NoError(t, repo.Set(ctx, domain.CollectionKey("u-2", domain.CollectionCategories), json.RawMessage(`[{"id":"2"}]`)))

	got, err := repo.Get(ctx, domain.CollectionKey("u-1", domain.CollectionCategories))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))
}

func TestKVRepository_ReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "k", json.RawMessage(`{"a":1}`)))
	require.NoError(t, repo.Close())

	reopened, err := NewKVRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestKVRepository_ConcurrentWritesLastOneWins(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, _ := json.Marshal([]int{i})
			_ = repo.Set(ctx, "k", value)
		}(i)
	}
	wg.Wait()

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)

	var values []int
	require.NoError(t, json.Unmarshal(got, &values))
	assert.Len(t, values, 1)
}
