package gateway

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

// Remote is the backend the gateway synchronizes with
type Remote interface {
	SignUp(ctx context.Context, email, password, name string) (*domain.PendingSignUp, error)
	FetchCategories(ctx context.Context, accessToken string) ([]domain.Category, error)
	FetchExpenses(ctx context.Context, accessToken string) ([]domain.Expense, error)
	SaveCategories(ctx context.Context, accessToken string, categories []domain.Category) error
	SaveExpenses(ctx context.Context, accessToken string, expenses []domain.Expense) error
}

// APIClient is the HTTP client for the ledger backend
type APIClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

var _ Remote = (*APIClient)(nil)

// NewAPIClient creates an APIClient. baseURL includes the service prefix,
// e.g. https://api.example.com/budget-ledger.
func NewAPIClient(baseURL, anonKey string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signUpResponse struct {
	Message string          `json:"message"`
	User    domain.Identity `json:"user"`
}

type categoriesBody struct {
	Categories []domain.Category `json:"categories"`
}

type expensesBody struct {
	Expenses []domain.Expense `json:"expenses"`
}

type errorBody struct {
	Error string `json:"error"`
}

// apiError is a non-2xx response from the backend
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// SignUp asks the backend to provision an account. No session is created.
func (c *APIClient) SignUp(ctx context.Context, email, password, name string) (*domain.PendingSignUp, error) {
	var resp signUpResponse
	err := c.do(ctx, http.MethodPost, "/signup", c.anonKey, signUpRequest{Email: email, Password: password, Name: name}, &resp)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return nil, &domain.ValidationError{Message: apiErr.Message, Err: domain.ErrInvalidInput}
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return &domain.PendingSignUp{Message: resp.Message, Identity: resp.User}, nil
}

// FetchCategories returns the stored category collection, empty when none was saved
func (c *APIClient) FetchCategories(ctx context.Context, accessToken string) ([]domain.Category, error) {
	var body categoriesBody
	if err := c.do(ctx, http.MethodGet, "/categories", accessToken, nil, &body); err != nil {
		return nil, fetchError(domain.CollectionCategories, err)
	}
	if body.Categories == nil {
		return []domain.Category{}, nil
	}
	return body.Categories, nil
}

// FetchExpenses returns the stored expense collection, empty when none was saved
func (c *APIClient) FetchExpenses(ctx context.Context, accessToken string) ([]domain.Expense, error) {
	var body expensesBody
	if err := c.do(ctx, http.MethodGet, "/expenses", accessToken, nil, &body); err != nil {
		return nil, fetchError(domain.CollectionExpenses, err)
	}
	if body.Expenses == nil {
		return []domain.Expense{}, nil
	}
	return body.Expenses, nil
}

// SaveCategories replaces the stored category collection
func (c *APIClient) SaveCategories(ctx context.Context, accessToken string, categories []domain.Category) error {
	if categories == nil {
		categories = []domain.Category{}
	}
	err := c.do(ctx, http.MethodPost, "/categories", accessToken, categoriesBody{Categories: categories}, nil)
	return pushError(domain.CollectionCategories, err)
}

// SaveExpenses replaces the stored expense collection
func (c *APIClient) SaveExpenses(ctx context.Context, accessToken string, expenses []domain.Expense) error {
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	err := c.do(ctx, http.MethodPost, "/expenses", accessToken, expensesBody{Expenses: expenses}, nil)
	return pushError(domain.CollectionExpenses, err)
}

func fetchError(kind domain.CollectionKind, err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return &domain.AuthError{Message: "Unauthorized", Err: domain.ErrUnauthorized}
	}
	return fmt.Errorf("fetch %s: %w", kind, err)
}

func pushError(kind domain.CollectionKind, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return &domain.SyncError{Kind: kind, Err: err}
	}
	syncErr := &domain.SyncError{Kind: kind, StatusCode: apiErr.StatusCode, Err: apiErr}
	if apiErr.StatusCode == http.StatusUnauthorized {
		syncErr.Err = &domain.AuthError{Message: "Unauthorized", Err: domain.ErrUnauthorized}
	}
	return syncErr
}

func (c *APIClient) do(ctx context.Context, method, path, bearer string, in, out any) error {
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
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &body)
		return &apiError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
