package service

import (
	"sort"
	"sync"
	"time"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/util"
)

// Clock returns the current wall-clock time
type Clock func() time.Time

// MonthService tracks the month window being viewed and derives the months that
// hold data
type MonthService struct {
	mu      sync.RWMutex
	current domain.MonthKey
	now     Clock
}

// NewMonthService creates a MonthService positioned on the month containing now()
func NewMonthService(now Clock) *MonthService {
	if now == nil {
		now = time.Now
	}
	return &MonthService{
		current: domain.MonthKeyFromTime(now()),
		now:     now,
	}
}

// Current returns the month being viewed
func (s *MonthService) Current() domain.MonthKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Navigate moves the window one calendar month in the given direction
func (s *MonthService) Navigate(direction domain.Direction) (domain.MonthKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year, month, err := s.current.YearMonth()
	if err != nil {
		return s.current, err
	}

	switch direction {
	case domain.DirectionPrev:
		year, month = util.PreviousMonth(year, month)
	case domain.DirectionNext:
		year, month = util.NextMonth(year, month)
	default:
		return s.current, domain.NewValidationError("direction", "Direction must be prev or next")
	}

	s.current = domain.MonthKeyFromTime(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	return s.current, nil
}

// SelectMonth jumps directly to key; only the YYYY-MM shape is checked
func (s *MonthService) SelectMonth(key string) error {
	parsed, err := domain.ParseMonthKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = parsed
	s.mu.Unlock()
	return nil
}

// MonthsWithData returns the distinct months holding at least one expense, most
// recent first
func (s *MonthService) MonthsWithData(expenses []domain.Expense) []domain.MonthKey {
	seen := make(map[domain.MonthKey]struct{}, len(expenses))
	months := make([]domain.MonthKey, 0)
	for _, e := range expenses {
		key := e.Month()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}

	sort.Slice(months, func(i, j int) bool {
		return months[i] > months[j]
	})
	return months
}

// IsCurrentCalendarMonth compares key against the live clock, not the month the
// service started on
func (s *MonthService) IsCurrentCalendarMonth(key domain.MonthKey) bool {
	year, month, err := key.YearMonth()
	if err != nil {
		return false
	}
	return util.IsSameMonth(year, month, s.now())
}

// Label returns the human-readable name of key, e.g. "February 2024"
func (s *MonthService) Label(key domain.MonthKey) string {
	return key.Label()
}
