package domain

import (
	"context"
	"time"
)

// Identity is an account known to the identity provider
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`

	// ExpiresAt is the expiry of the token the identity was resolved from, zero
	// when the resolver does not know it
	ExpiresAt time.Time `json:"-"`
}

// Credentials are an email/password pair
type Credentials struct {
	Email    string
	Password string
}

// Session pairs a signed-in identity with its bearer credential
type Session struct {
	Identity    Identity
	AccessToken string
}

// PendingSignUp is the result of provisioning an account that still has to verify
// its one-time code before it can sign in.
type PendingSignUp struct {
	Message  string
	Identity Identity
}

// IdentityProvider is the server-side view of the external identity service
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, name string) (*Identity, error)
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
}

// TokenResolver resolves a bearer token to the identity it was issued for
type TokenResolver interface {
	Resolve(ctx context.Context, accessToken string) (*Identity, error)
}

// IdentityClient is the client-side view of the external identity service
type IdentityClient interface {
	SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error)
	VerifyOTP(ctx context.Context, email, code string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
}
