package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/repository/storage"
)

// DefaultArchiveURLExpiry is how long an archived report link stays valid
const DefaultArchiveURLExpiry = 15 * time.Minute

// ArchivedReport locates a report uploaded to the archive
type ArchivedReport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LedgerService persists each user's collections as whole JSON values and derives
// read-only month views from them
type LedgerService struct {
	kv        domain.KVStore
	publisher domain.ChangePublisher
	calc      *CalculationService
	reports   *ReportService
	archive   storage.ReportRepository
	expiry    time.Duration
	now       Clock
}

// NewLedgerService creates a new LedgerService. publisher may be nil.
func NewLedgerService(kv domain.KVStore, publisher domain.ChangePublisher, calc *CalculationService, reports *ReportService) *LedgerService {
	return &LedgerService{
		kv:        kv,
		publisher: publisher,
		calc:      calc,
		reports:   reports,
		expiry:    DefaultArchiveURLExpiry,
		now:       time.Now,
	}
}

// SetReportArchive enables ArchiveReport
func (s *LedgerService) SetReportArchive(archive storage.ReportRepository, expiry time.Duration) {
	s.archive = archive
	if expiry > 0 {
		s.expiry = expiry
	}
}

// GetCategories returns the user's stored categories, empty when none were saved
func (s *LedgerService) GetCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	return load[domain.Category](ctx, s.kv, domain.CollectionKey(userID, domain.CollectionCategories))
}

// SaveCategories replaces the user's stored categories
func (s *LedgerService) SaveCategories(ctx context.Context, userID string, categories []domain.Category) error {
	if err := save(ctx, s.kv, domain.CollectionKey(userID, domain.CollectionCategories), categories); err != nil {
		return err
	}
	s.publish(userID, domain.CollectionCategories, len(categories))
	return nil
}

// GetExpenses returns the user's stored expenses, empty when none were saved
func (s *LedgerService) GetExpenses(ctx context.Context, userID string) ([]domain.Expense, error) {
	return load[domain.Expense](ctx, s.kv, domain.CollectionKey(userID, domain.CollectionExpenses))
}

// SaveExpenses replaces the user's stored expenses
func (s *LedgerService) SaveExpenses(ctx context.Context, userID string, expenses []domain.Expense) error {
	if err := save(ctx, s.kv, domain.CollectionKey(userID, domain.CollectionExpenses), expenses); err != nil {
		return err
	}
	s.publish(userID, domain.CollectionExpenses, len(expenses))
	return nil
}

// MonthSummary aggregates the stored ledger for month
func (s *LedgerService) MonthSummary(ctx context.Context, userID, month string) (*domain.MonthSummary, error) {
	key, err := domain.ParseMonthKey(month)
	if err != nil {
		return nil, err
	}

	categories, expenses, err := s.loadLedger(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.calc.Summarize(categories, expenses, key), nil
}

// MonthReport renders the spreadsheet report for month
func (s *LedgerService) MonthReport(ctx context.Context, userID, month string) (*domain.Report, []byte, error) {
	key, err := domain.ParseMonthKey(month)
	if err != nil {
		return nil, nil, err
	}

	categories, expenses, err := s.loadLedger(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return s.reports.Export(categories, expenses, key)
}

// ArchiveReport renders the report for month, uploads it and returns a download link
func (s *LedgerService) ArchiveReport(ctx context.Context, userID, month string) (*ArchivedReport, error) {
	if s.archive == nil {
		return nil, domain.ErrArchiveUnavailable
	}

	report, data, err := s.MonthReport(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	key := storage.ReportKey(userID, string(report.Month), report.FileName)
	if err := s.archive.Put(ctx, key, data, storage.XLSXContentType); err != nil {
		return nil, err
	}

	url, err := s.archive.DownloadURL(ctx, key, report.FileName, s.expiry)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID).Str("key", key).Msg("Report archived")
	return &ArchivedReport{
		Key:       key,
		URL:       url,
		FileName:  report.FileName,
		ExpiresAt: s.now().Add(s.expiry).UTC(),
	}, nil
}

func (s *LedgerService) loadLedger(ctx context.Context, userID string) ([]domain.Category, []domain.Expense, error) {
	var (
		categories []domain.Category
		expenses   []domain.Expense
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		categories, err = s.GetCategories(egCtx, userID)
		return err
	})
	eg.Go(func() error {
		var err error
		expenses, err = s.GetExpenses(egCtx, userID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return categories, expenses, nil
}

func (s *LedgerService) publish(userID string, kind domain.CollectionKind, count int) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishCollectionReplaced(domain.CollectionReplaced{
		UserID:     userID,
		Kind:       kind,
		Count:      count,
		ReplacedAt: s.now().UTC(),
	})
}

func load[T any](ctx context.Context, kv domain.KVStore, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save[T any](ctx context.Context, kv domain.KVStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
