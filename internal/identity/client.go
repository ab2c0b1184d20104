package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/budget-ledger/internal/domain"
)

// Client talks to a GoTrue-compatible identity service over its REST API.
// It serves both the backend (user provisioning, token lookup) and the command-line
// client (password sign-in, one-time code verification, sign-out).
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

var (
	_ domain.IdentityProvider = (*Client)(nil)
	_ domain.IdentityClient   = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithServiceKey sets the privileged key used for admin operations
func WithServiceKey(key string) Option {
	return func(c *Client) {
		c.serviceKey = key
	}
}

// NewClient creates a Client for the identity service rooted at baseURL
func NewClient(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

func (u userResponse) identity() *domain.Identity {
	return &domain.Identity{ID: u.ID, Email: u.Email, Name: u.UserMetadata.Name}
}

type sessionResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

// errorResponse covers the error shapes the identity service emits
type errorResponse struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// statusError is returned for any non-2xx response
type statusError struct {
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity service: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("identity service: %s (status %d)", e.Message, e.StatusCode)
}

func (e *statusError) clientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// CreateUser provisions an account with a pre-confirmed email address
func (c *Client) CreateUser(ctx context.Context, email, password, name string) (*domain.Identity, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]string{"name": name},
	}

	var user userResponse
	err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceKey, c.serviceKey, body, &user)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.clientError() {
			return nil, &domain.ValidationError{Message: se.Message, Err: domain.ErrInvalidInput}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user.identity(), nil
}

// GetUser resolves an access token to the user it was issued for
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	if accessToken == "" {
		return nil, &domain.AuthError{Message: "missing access token"}
	}

	apiKey := c.anonKey
	if apiKey == "" {
		apiKey = c.serviceKey
	}

	var user userResponse
	if err := c.do(ctx, http.MethodGet, "/user", apiKey, accessToken, nil, &user); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.clientError() {
			return nil, &domain.AuthError{Message: "invalid access token", Err: domain.ErrUnauthorized}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.ID == "" {
		return nil, &domain.AuthError{Message: "invalid access token"}
	}
	return user.identity(), nil
}

// Resolve implements domain.TokenResolver by asking the identity service
func (c *Client) Resolve(ctx context.Context, accessToken string) (*domain.Identity, error) {
	return c.GetUser(ctx, accessToken)
}

// SignInWithPassword exchanges an email/password pair for a session
func (c *Client) SignInWithPassword(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	return c.session(ctx, "/token?grant_type=password", body, "sign in")
}

// VerifyOTP completes email verification with the one-time code sent after sign-up
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*domain.Session, error) {
	body := map[string]string{"type": "email", "email": email, "token": code}
	return c.session(ctx, "/verify", body, "verify otp")
}

// SignOut revokes the session behind accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, "/logout", c.anonKey, accessToken, nil, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (c *Client) session(ctx context.Context, path string, body any, op string) (*domain.Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, path, c.anonKey, c.anonKey, body, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.clientError() {
			return nil, &domain.AuthError{Message: se.Message, Err: domain.ErrUnauthorized}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.AccessToken == "" {
		return nil, &domain.AuthError{Message: "no session was issued"}
	}
	return &domain.Session{Identity: *resp.User.identity(), AccessToken: resp.AccessToken}, nil
}

func (c *Client) do(ctx context.Context, method, path, apiKey, bearer string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &errResp)
		return &statusError{StatusCode: resp.StatusCode, Message: errResp.text()}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
