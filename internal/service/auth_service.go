package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dafibh/budget-ledger/internal/domain"
)

// AuthService handles account provisioning
type AuthService struct {
	identity domain.IdentityProvider
}

// NewAuthService creates a new AuthService
func NewAuthService(identity domain.IdentityProvider) *AuthService {
	return &AuthService{identity: identity}
}

// SignUp validates the request against the password policy and creates the account
// at the identity provider. The first violated rule is reported.
func (s *AuthService) SignUp(ctx context.Context, email, password, name string) (*domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email", "Email and password are required")
	}

	if violations := domain.ValidatePassword(password); len(violations) > 0 {
		return nil, violations[0]
	}

	identity, err := s.identity.CreateUser(ctx, email, password, strings.TrimSpace(name))
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, err
	}

	log.Info().Str("user_id", identity.ID).Msg("User signed up")
	return identity, nil
}
