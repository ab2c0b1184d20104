package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/ledger"
)

// Gateway keeps a local ledger.Store in step with the remote backend. While signed in,
// every committed mutation pushes the whole affected collection upstream.
type Gateway struct {
	store    *ledger.Store
	remote   Remote
	identity domain.IdentityClient

	mu      sync.RWMutex
	session *domain.Session

	pushes      sync.WaitGroup
	unsubscribe func()
}

// New creates a Gateway and subscribes it to store mutations
func New(store *ledger.Store, remote Remote, identity domain.IdentityClient) *Gateway {
	g := &Gateway{
		store:    store,
		remote:   remote,
		identity: identity,
	}
	g.unsubscribe = store.Subscribe(g.onChange)
	return g
}

// Session returns a copy of the current session, or nil when signed out
func (g *Gateway) Session() *domain.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return nil
	}
	session := *g.session
	return &session
}

// SignedIn reports whether a session is held
func (g *Gateway) SignedIn() bool {
	return g.Session() != nil
}

// SignIn exchanges credentials with the identity provider and loads the user's ledger
func (g *Gateway) SignIn(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	session, err := g.identity.SignInWithPassword(ctx, creds)
	if err != nil {
		return nil, err
	}
	return g.establish(ctx, session)
}

// VerifyOTP completes the one-time code step after sign-up and signs in
func (g *Gateway) VerifyOTP(ctx context.Context, email, code string) (*domain.Identity, error) {
	session, err := g.identity.VerifyOTP(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return g.establish(ctx, session)
}

// SignUp provisions an account through the backend. It never creates a session.
func (g *Gateway) SignUp(ctx context.Context, creds domain.Credentials, displayName string) (*domain.PendingSignUp, error) {
	return g.remote.SignUp(ctx, creds.Email, creds.Password, displayName)
}

// establish fetches both collections, replaces the store and adopts the session.
// A user with no stored categories keeps the defaults, which are then seeded upstream.
func (g *Gateway) establish(ctx context.Context, session *domain.Session) (*domain.Identity, error) {
	var (
		categories []domain.Category
		expenses   []domain.Expense
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		categories, err = g.remote.FetchCategories(egCtx, session.AccessToken)
		return err
	})
	eg.Go(func() error {
		var err error
		expenses, err = g.remote.FetchExpenses(egCtx, session.AccessToken)
		return err
	})
	if err := eg.Wait(); err != nil {
		g.clearSession()
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	seed := len(categories) == 0
	if seed {
		categories = domain.DefaultCategories()
	}
	g.store.Replace(categories, expenses)

	g.mu.Lock()
	g.session = session
	g.mu.Unlock()

	log.Info().
		Str("user_id", session.Identity.ID).
		Int("categories", len(categories)).
		Int("expenses", len(expenses)).
		Bool("seeded", seed).
		Msg("Signed in")

	if seed {
		if err := g.Push(ctx, domain.CollectionCategories); err != nil {
			log.Warn().Err(err).Str("user_id", session.Identity.ID).Msg("Failed to seed default categories")
		}
	}

	identity := session.Identity
	return &identity, nil
}

// SignOut drops the session, revokes it at the provider on a best-effort basis
// and resets the store to the default categories with no expenses.
func (g *Gateway) SignOut(ctx context.Context) {
	session := g.clearSession()
	if session != nil {
		if err := g.identity.SignOut(ctx, session.AccessToken); err != nil {
			log.Warn().Err(err).Msg("Identity provider sign-out failed")
		}
	}
	g.store.Reset()
}

func (g *Gateway) clearSession() *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	session := g.session
	g.session = nil
	return session
}

// Push sends the current contents of one collection upstream, replacing what the
// backend holds. It returns domain.ErrNotSignedIn when there is no session.
func (g *Gateway) Push(ctx context.Context, kind domain.CollectionKind) error {
	session := g.Session()
	if session == nil {
		return domain.ErrNotSignedIn
	}
	return g.push(ctx, session.AccessToken, kind, g.snapshot(kind))
}

// Wait blocks until every in-flight automatic push has finished
func (g *Gateway) Wait() {
	g.pushes.Wait()
}

// Close stops listening to the store and waits for in-flight pushes
func (g *Gateway) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
	g.Wait()
}

type snapshot struct {
	categories []domain.Category
	expenses   []domain.Expense
}

func (g *Gateway) snapshot(kind domain.CollectionKind) snapshot {
	if kind == domain.CollectionCategories {
		return snapshot{categories: g.store.Categories()}
	}
	return snapshot{expenses: g.store.Expenses()}
}

func (g *Gateway) push(ctx context.Context, accessToken string, kind domain.CollectionKind, snap snapshot) error {
	switch kind {
	case domain.CollectionCategories:
		return g.remote.SaveCategories(ctx, accessToken, snap.categories)
	case domain.CollectionExpenses:
		return g.remote.SaveExpenses(ctx, accessToken, snap.expenses)
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
}

// onChange runs after each committed store mutation. The snapshot is taken now,
// the upload happens in the background and its failure is only logged.
func (g *Gateway) onChange(kind domain.CollectionKind) {
	session := g.Session()
	if session == nil {
		return
	}
	snap := g.snapshot(kind)

	g.pushes.Add(1)
	go func() {
		defer g.pushes.Done()
		if err := g.push(context.Background(), session.AccessToken, kind, snap); err != nil {
			log.Error().
				Err(err).
				Str("user_id", session.Identity.ID).
				Str("collection", string(kind)).
				Msg("Failed to push collection")
		}
	}()
}
