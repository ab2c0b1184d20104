package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/rs/zerolog/log"

	"github.com/dafibh/budget-ledger/internal/domain"
)

// Claims contains the identity-service specific claims of an access token
type Claims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

// Validate implements validator.CustomClaims
func (c *Claims) Validate(ctx context.Context) error {
	return nil
}

// JWTResolver resolves access tokens locally by verifying their HS256 signature
// with the identity service's shared secret.
type JWTResolver struct {
	validator *validator.Validator
}

var _ domain.TokenResolver = (*JWTResolver)(nil)

// NewJWTResolver creates a JWTResolver for tokens issued by issuer for audience
func NewJWTResolver(secret, issuer, audience string) (*JWTResolver, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(secret), nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &Claims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &JWTResolver{validator: jwtValidator}, nil
}

// Resolve validates the token and returns the identity named by its subject
func (r *JWTResolver) Resolve(ctx context.Context, accessToken string) (*domain.Identity, error) {
	claims, err := r.validator.ValidateToken(ctx, accessToken)
	if err != nil {
		log.Debug().Err(err).Msg("Token validation failed")
		return nil, &domain.AuthError{Message: "invalid token", Err: domain.ErrUnauthorized}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok || validatedClaims.RegisteredClaims.Subject == "" {
		return nil, &domain.AuthError{Message: "invalid claims", Err: domain.ErrUnauthorized}
	}

	identity := &domain.Identity{ID: validatedClaims.RegisteredClaims.Subject}
	if exp := validatedClaims.RegisteredClaims.Expiry; exp > 0 {
		identity.ExpiresAt = time.Unix(exp, 0)
	}
	if custom, ok := validatedClaims.CustomClaims.(*Claims); ok {
		identity.Email = custom.Email
		identity.Name = custom.UserMetadata.Name
	}
	return identity, nil
}
