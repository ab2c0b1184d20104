package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dafibh/budget-ledger/internal/domain"
)

// DefaultCacheSize bounds the number of remembered tokens
const DefaultCacheSize = 1024

// CachingResolver remembers successful token resolutions for a short time so that a
// client syncing both collections does not cost two identity round trips.
// Only identities carrying a token expiry are cached, and never past that expiry.
// Identities looked up from the provider have no expiry and are resolved every time,
// so a revoked token fails on its next request. Failed resolutions are never cached.
type CachingResolver struct {
	next  domain.TokenResolver
	cache *expirable.LRU[string, domain.Identity]
	now   func() time.Time
}

var _ domain.TokenResolver = (*CachingResolver)(nil)

// NewCachingResolver wraps next with an LRU cache of size entries that expire after ttl
func NewCachingResolver(next domain.TokenResolver, size int, ttl time.Duration) *CachingResolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachingResolver{
		next:  next,
		cache: expirable.NewLRU[string, domain.Identity](size, nil, ttl),
		now:   time.Now,
	}
}

// WithCache puts a CachingResolver in front of next when ttl is positive and
// returns next unchanged otherwise
func WithCache(next domain.TokenResolver, size int, ttl time.Duration) domain.TokenResolver {
	if ttl <= 0 {
		return next
	}
	return NewCachingResolver(next, size, ttl)
}

// Resolve returns the cached identity for accessToken or asks the wrapped resolver
func (r *CachingResolver) Resolve(ctx context.Context, accessToken string) (*domain.Identity, error) {
	key := tokenKey(accessToken)
	if identity, ok := r.cache.Get(key); ok {
		if r.now().Before(identity.ExpiresAt) {
			return &identity, nil
		}
		r.Forget(accessToken)
	}

	identity, err := r.next.Resolve(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if r.now().Before(identity.ExpiresAt) {
		r.cache.Add(key, *identity)
	}
	return identity, nil
}

// Forget drops accessToken from the cache
func (r *CachingResolver) Forget(accessToken string) {
	r.cache.Remove(tokenKey(accessToken))
}

// Len returns the number of cached entries
func (r *CachingResolver) Len() int {
	return r.cache.Len()
}

func tokenKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}
