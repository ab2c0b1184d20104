// Package ledger holds the in-memory category and expense collections of a
// single signed-in (or signed-out) user.
package ledger

import (
	"sync"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/google/uuid"
)

// Observer is notified after a mutation of the given collection has been committed
type Observer func(kind domain.CollectionKind)

// IDGenerator produces identities unique for the process lifetime
type IDGenerator func() string

// Store owns the category and expense collections and their identity generation.
// It is safe for concurrent use; every mutation is applied under a single lock so a
// reader never sees a half-applied cascade.
type Store struct {
	mu         sync.RWMutex
	categories []domain.Category
	expenses   []domain.Expense
	newID      IDGenerator

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObsID int
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator overrides the default UUID identity generator
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore creates a Store holding the default categories and no expenses
func NewStore(opts ...Option) *Store {
	s := &Store{
		categories: domain.DefaultCategories(),
		expenses:   []domain.Expense{},
		newID:      func() string { return uuid.New().String() },
		observers:  make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer and returns a function that removes it
func (s *Store) Subscribe(observer Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = observer
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Store) notify(kinds ...domain.CollectionKind) {
	s.obsMu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.obsMu.RUnlock()

	for _, kind := range kinds {
		for _, o := range observers {
			o(kind)
		}
	}
}

// Categories returns a copy of the category collection in insertion order
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

// Expenses returns a copy of the expense collection in insertion order
func (s *Store) Expenses() []domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Expense(nil), s.expenses...)
}

// Category returns the category with the given id
func (s *Store) Category(id string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.categoryIndex(id); i >= 0 {
		return s.categories[i], nil
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

// CategoryName resolves a possibly dangling category reference
func (s *Store) CategoryName(id string) string {
	c, err := s.Category(id)
	if err != nil {
		return domain.UnknownCategoryName
	}
	return c.Name
}

// AddCategory appends a category under a fresh identity
func (s *Store) AddCategory(fields domain.CategoryFields) domain.Category {
	s.mu.Lock()
	category := domain.Category{
		ID:     s.newID(),
		Name:   fields.Name,
		Budget: fields.Budget,
		Color:  fields.Color,
		Icon:   fields.Icon,
	}
	s.categories = append(s.categories, category)
	s.mu.Unlock()

	s.notify(domain.CollectionCategories)
	return category
}

// UpdateCategory merges patch into the category with the given id
func (s *Store) UpdateCategory(id string, patch domain.CategoryPatch) error {
	s.mu.Lock()
	i := s.categoryIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrCategoryNotFound
	}
	patch.Apply(&s.categories[i])
	s.mu.Unlock()

	s.notify(domain.CollectionCategories)
	return nil
}

// DeleteCategory removes the category and every expense referencing it
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	i := s.categoryIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrCategoryNotFound
	}
	s.categories = append(s.categories[:i:i], s.categories[i+1:]...)

	kept := make([]domain.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.CategoryID != id {
			kept = append(kept, e)
		}
	}
	cascaded := len(kept) != len(s.expenses)
	s.expenses = kept
	s.mu.Unlock()

	if cascaded {
		s.notify(domain.CollectionCategories, domain.CollectionExpenses)
	} else {
		s.notify(domain.CollectionCategories)
	}
	return nil
}

// AddExpense appends an expense under a fresh identity
func (s *Store) AddExpense(fields domain.ExpenseFields) domain.Expense {
	s.mu.Lock()
	expense := domain.Expense{
		ID:          s.newID(),
		CategoryID:  fields.CategoryID,
		Amount:      fields.Amount,
		Description: fields.Description,
		Date:        fields.Date,
	}
	s.expenses = append(s.expenses, expense)
	s.mu.Unlock()

	s.notify(domain.CollectionExpenses)
	return expense
}

// DeleteExpense removes a single expense
func (s *Store) DeleteExpense(id string) error {
	s.mu.Lock()
	i := -1
	for j, e := range s.expenses {
		if e.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrExpenseNotFound
	}
	s.expenses = append(s.expenses[:i:i], s.expenses[i+1:]...)
	s.mu.Unlock()

	s.notify(domain.CollectionExpenses)
	return nil
}

// Replace swaps both collections wholesale. Observers are not notified: a
// replacement loads state, it is not a user mutation.
func (s *Store) Replace(categories []domain.Category, expenses []domain.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]domain.Category{}, categories...)
	s.expenses = append([]domain.Expense{}, expenses...)
}

// Reset restores the default categories and drops every expense
func (s *Store) Reset() {
	s.Replace(domain.DefaultCategories(), nil)
}

func (s *Store) categoryIndex(id string) int {
	for i, c := range s.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}
