package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the resolved identity
	IdentityKey contextKey = "identity"
	// UserIDKey is the context key for the identity provider's user ID
	UserIDKey contextKey = "user_id"
)

// AuthMiddleware resolves bearer tokens to identities
type AuthMiddleware struct {
	resolver domain.TokenResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(resolver domain.TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate returns an Echo middleware that requires a valid bearer token
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c)
			if !ok {
				return unauthorizedError(c)
			}

			identity, err := m.resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token resolution failed")
				return unauthorizedError(c)
			}
			if identity == nil || identity.ID == "" {
				return unauthorizedError(c)
			}

			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), identity)))
			return next(c)
		}
	}
}

// RequireAnonKey rejects requests whose bearer token is not the public anonymous key.
// An empty key disables the check.
func RequireAnonKey(anonKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if anonKey == "" {
				return next(c)
			}
			token, ok := BearerToken(c)
			if !ok {
				token = c.Request().Header.Get("apikey")
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(anonKey)) != 1 {
				return unauthorizedError(c)
			}
			return next(c)
		}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// WithIdentity stores identity in ctx
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, identity)
	return context.WithValue(ctx, UserIDKey, identity.ID)
}

// GetUserID extracts the user ID from the context
func GetUserID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetIdentity extracts the resolved identity from the context
func GetIdentity(c echo.Context) *domain.Identity {
	if identity, ok := c.Request().Context().Value(IdentityKey).(*domain.Identity); ok {
		return identity
	}
	return nil
}
