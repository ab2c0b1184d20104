package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dafibh/budget-ledger/internal/domain"
)

// countingResolver issues identities whose token expires after lifetime; a zero
// lifetime mimics a provider lookup that knows no expiry
type countingResolver struct {
	calls    int
	err      error
	lifetime time.Duration
}

func (r *countingResolver) Resolve(ctx context.Context, accessToken string) (*domain.Identity, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	identity := &domain.Identity{ID: "user-" + accessToken}
	if r.lifetime > 0 {
		identity.ExpiresAt = time.Now().Add(r.lifetime)
	}
	return identity, nil
}

func TestCachingResolver_CachesSuccess(t *testing.T) {
	next := &countingResolver{lifetime: time.Hour}
	resolver := NewCachingResolver(next, 8, time.Minute)

	first, err := resolver.Resolve(context.Background(), "a")
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "user-a", first.ID)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, resolver.Len())

	resolver.Forget("a")
	_, err = resolver.Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachingResolver_DoesNotCacheFailures(t *testing.T) {
	next := &countingResolver{err: &domain.AuthError{Message: "invalid token"}}
	resolver := NewCachingResolver(next, 0, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := resolver.Resolve(context.Background(), "bad")
		assert.True(t, domain.IsAuthError(err))
	}
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 0, resolver.Len())
}

func TestCachingResolver_RevokedProviderTokenFailsImmediately(t *testing.T) {
	next := &countingResolver{}
	resolver := NewCachingResolver(next, 8, time.Minute)

	identity, err := resolver.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-tok", identity.ID)
	assert.Equal(t, 0, resolver.Len())

	next.err = &domain.AuthError{Message: "session revoked"}
	identity, err = resolver.Resolve(context.Background(), "tok")

	assert.Nil(t, identity)
	assert.True(t, domain.IsAuthError(err))
	assert.Equal(t, 2, next.calls)
}

func TestCachingResolver_EntryNeverOutlivesToken(t *testing.T) {
	next := &countingResolver{lifetime: time.Hour}
	resolver := NewCachingResolver(next, 8, time.Minute)

	_, err := resolver.Resolve(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, 1, resolver.Len())

	// Past the token's expiry but well inside the cache ttl
	resolver.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	next.err = &domain.AuthError{Message: "token expired"}

	_, err = resolver.Resolve(context.Background(), "a")
	assert.True(t, domain.IsAuthError(err))
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 0, resolver.Len())
}

func TestCachingResolver_Expires(t *testing.T) {
	next := &countingResolver{lifetime: time.Hour}
	resolver := NewCachingResolver(next, 8, 20*time.Millisecond)

	_, err := resolver.Resolve(context.Background(), "a")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, _ = resolver.Resolve(context.Background(), "a")
		return next.calls >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestWithCache(t *testing.T) {
	next := &countingResolver{}

	assert.Same(t, domain.TokenResolver(next), WithCache(next, 8, 0))
	assert.IsType(t, &CachingResolver{}, WithCache(next, 8, time.Minute))
}
