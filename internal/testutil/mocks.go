package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/budget-ledger/internal/domain"
)

// MockKVStore is a mock implementation of domain.KVStore
type MockKVStore struct {
	mu       sync.Mutex
	Values   map[string]json.RawMessage
	SetCalls int
	GetFn    func(key string) (json.RawMessage, error)
	SetFn    func(key string, value json.RawMessage) error
}

// NewMockKVStore creates a new MockKVStore
func NewMockKVStore() *MockKVStore {
	return &MockKVStore{
		Values: make(map[string]json.RawMessage),
	}
}

// Get retrieves the value stored under key
func (m *MockKVStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if m.GetFn != nil {
		return m.GetFn(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.Values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append(json.RawMessage(nil), value...), nil
}

// Set stores value under key
func (m *MockKVStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if m.SetFn != nil {
		return m.SetFn(key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	m.Values[key] = append(json.RawMessage(nil), value...)
	return nil
}

// Put stores a raw JSON string under key, for test setup
func (m *MockKVStore) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Values[key] = json.RawMessage(value)
}

// MockIdentityProvider is a mock implementation of domain.IdentityProvider and
// domain.TokenResolver
type MockIdentityProvider struct {
	mu       sync.Mutex
	Tokens   map[string]*domain.Identity
	Created  []*domain.Identity
	CreateFn func(email, password, name string) (*domain.Identity, error)
	GetFn    func(accessToken string) (*domain.Identity, error)
	nextID   int
}

// NewMockIdentityProvider creates a new MockIdentityProvider
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		Tokens: make(map[string]*domain.Identity),
	}
}

// CreateUser records a new user
func (m *MockIdentityProvider) CreateUser(ctx context.Context, email, password, name string) (*domain.Identity, error) {
	if m.CreateFn != nil {
		return m.CreateFn(email, password, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	identity := &domain.Identity{ID: fmt.Sprintf("user-%d", m.nextID), Email: email, Name: name}
	m.Created = append(m.Created, identity)
	return identity, nil
}

// GetUser resolves a token registered with AddToken
func (m *MockIdentityProvider) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	if m.GetFn != nil {
		return m.GetFn(accessToken)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.Tokens[accessToken]
	if !ok {
		return nil, &domain.AuthError{Message: "invalid token"}
	}
	copied := *identity
	return &copied, nil
}

// Resolve implements domain.TokenResolver
func (m *MockIdentityProvider) Resolve(ctx context.Context, accessToken string) (*domain.Identity, error) {
	return m.GetUser(ctx, accessToken)
}

// AddToken registers accessToken as belonging to identity
func (m *MockIdentityProvider) AddToken(accessToken string, identity *domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens[accessToken] = identity
}

// RevokeToken makes accessToken unresolvable, as a provider-side sign-out would
func (m *MockIdentityProvider) RevokeToken(accessToken string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Tokens, accessToken)
}

// MockChangePublisher is a mock implementation of domain.ChangePublisher
type MockChangePublisher struct {
	mu     sync.Mutex
	Events []domain.CollectionReplaced
}

// NewMockChangePublisher creates a new MockChangePublisher
func NewMockChangePublisher() *MockChangePublisher {
	return &MockChangePublisher{}
}

// PublishCollectionReplaced records the event
func (m *MockChangePublisher) PublishCollectionReplaced(event domain.CollectionReplaced) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Published returns a copy of the recorded events
func (m *MockChangePublisher) Published() []domain.CollectionReplaced {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CollectionReplaced(nil), m.Events...)
}

// MockReportRepository is a mock implementation of storage.ReportRepository
type MockReportRepository struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	PutFn   func(key string, data []byte) error
}

// NewMockReportRepository creates a new MockReportRepository
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

// Put stores data under key
func (m *MockReportRepository) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if m.PutFn != nil {
		return m.PutFn(key, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = append([]byte(nil), data...)
	m.Types[key] = contentType
	return nil
}

// Remove deletes key
func (m *MockReportRepository) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

// DownloadURL returns a fake signed URL
func (m *MockReportRepository) DownloadURL(ctx context.Context, key, fileName string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://reports.test/%s?expires=%d", key, int(expiry.Seconds())), nil
}
