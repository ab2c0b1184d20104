package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dafibh/budget-ledger/internal/domain"
)

const (
	testSecret   = "super-secret-jwt-token-with-at-least-32-characters"
	testIssuer   = "https://auth.example.com/auth/v1"
	testAudience = "authenticated"
)

func signHS256(t *testing.T, secret string, claims map[string]any) string {
	t.Helper()
	enc := base64.RawURLEncoding

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	signingInput := enc.EncodeToString(header) + "." + enc.EncodeToString(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	return signingInput + "." + enc.EncodeToString(mac.Sum(nil))
}

func validClaims() map[string]any {
	return map[string]any{
		"sub":           "u-1",
		"iss":           testIssuer,
		"aud":           testAudience,
		"exp":           time.Now().Add(time.Hour).Unix(),
		"iat":           time.Now().Add(-time.Minute).Unix(),
		"email":         "ann@example.com",
		"user_metadata": map[string]string{"name": "Ann"},
	}
}

func TestNewJWTResolver_RequiresSecret(t *testing.T) {
	_, err := NewJWTResolver("", testIssuer, testAudience)
	assert.Error(t, err)
}

func TestJWTResolver_Resolve(t *testing.T) {
	resolver, err := NewJWTResolver(testSecret, testIssuer, testAudience)
	require.NoError(t, err)

	claims := validClaims()
	identity, err := resolver.Resolve(context.Background(), signHS256(t, testSecret, claims))
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{
		ID:        "u-1",
		Email:     "ann@example.com",
		Name:      "Ann",
		ExpiresAt: time.Unix(claims["exp"].(int64), 0),
	}, identity)
}

func TestJWTResolver_Rejects(t *testing.T) {
	resolver, err := NewJWTResolver(testSecret, testIssuer, testAudience)
	require.NoError(t, err)

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	otherIssuer := validClaims()
	otherIssuer["iss"] = "https://evil.example.com"

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signHS256(t, "another-secret-that-is-long-enough-000000", validClaims())},
		{"expired", signHS256(t, testSecret, expired)},
		{"wrong issuer", signHS256(t, testSecret, otherIssuer)},
		{"garbage", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t, domain.IsAuthError(err))
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		})
	}
}
