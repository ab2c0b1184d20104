package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/repository/storage"
	"github.com/dafibh/budget-ledger/internal/testutil"
)

type ledgerFixture struct {
	kv        *testutil.MockKVStore
	publisher *testutil.MockChangePublisher
	svc       *LedgerService
}

func newLedgerFixture() *ledgerFixture {
	kv := testutil.NewMockKVStore()
	publisher := testutil.NewMockChangePublisher()
	calc := NewCalculationService()
	svc := NewLedgerService(kv, publisher, calc, NewReportService(calc, NewXLSXReportWriter()))
	svc.now = func() time.Time { return time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC) }
	return &ledgerFixture{kv: kv, publisher: publisher, svc: svc}
}

func TestLedgerService_GetMissingCollectionsAreEmpty(t *testing.T) {
	f := newLedgerFixture()

	categories, err := f.svc.GetCategories(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)

	expenses, err := f.svc.GetExpenses(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, expenses)
	assert.Empty(t, expenses)
}

func TestLedgerService_GetStoredNullIsEmpty(t *testing.T) {
	f := newLedgerFixture()
	f.kv.Put("user:u-1:expenses", "null")

	expenses, err := f.svc.GetExpenses(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, expenses)
}

func TestLedgerService_SaveReplacesWholeCollection(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.SaveCategories(ctx, "u-1", domain.DefaultCategories()))
	require.NoError(t, f.svc.SaveCategories(ctx, "u-1", []domain.Category{groceries(500)}))

	got, err := f.svc.GetCategories(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "g", got[0].ID)
	assert.True(t, got[0].Budget.Equal(decimal.NewFromInt(500)))

	assert.JSONEq(t, `[{"id":"g","name":"Groceries","budget":500,"color":"#10b981","icon":"🛒"}]`, string(f.kv.Values["user:u-1:categories"]))
}

func TestLedgerService_SaveNilStoresEmptyArray(t *testing.T) {
	f := newLedgerFixture()

	require.NoError(t, f.svc.SaveExpenses(context.Background(), "u-1", nil))
	assert.JSONEq(t, `[]`, string(f.kv.Values["user:u-1:expenses"]))
}

func TestLedgerService_UsersAreIsolated(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.SaveExpenses(ctx, "u-1", []domain.Expense{expense("e1", "g", "10", "2024-02-01")}))

	other, err := f.svc.GetExpenses(ctx, "u-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLedgerService_SavePublishesEvent(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.SaveExpenses(ctx, "u-1", []domain.Expense{expense("e1", "g", "10", "2024-02-01")}))

	events := f.publisher.Published()
	require.Len(t, events, 1)
	assert.Equal(t, domain.CollectionReplaced{
		UserID:     "u-1",
		Kind:       domain.CollectionExpenses,
		Count:      1,
		ReplacedAt: time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC),
	}, events[0])
}

func TestLedgerService_SaveFailureDoesNotPublish(t *testing.T) {
	f := newLedgerFixture()
	f.kv.SetFn = func(key string, value json.RawMessage) error {
		return errors.New("disk full")
	}

	err := f.svc.SaveCategories(context.Background(), "u-1", domain.DefaultCategories())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user:u-1:categories")
	assert.Empty(t, f.publisher.Published())
}

func TestLedgerService_GetCorruptValue(t *testing.T) {
	f := newLedgerFixture()
	f.kv.Put("user:u-1:categories", `{"not":"a list"}`)

	_, err := f.svc.GetCategories(context.Background(), "u-1")
	assert.Error(t, err)
}

func TestLedgerService_MonthSummary(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.SaveCategories(ctx, "u-1", []domain.Category{groceries(500)}))
	require.NoError(t, f.svc.SaveExpenses(ctx, "u-1", []domain.Expense{
		expense("e1", "g", "80", "2024-02-03"),
		expense("e2", "g", "20", "2024-03-01"),
	}))

	summary, err := f.svc.MonthSummary(ctx, "u-1", "2024-02")
	require.NoError(t, err)

	assert.Equal(t, domain.MonthKey("2024-02"), summary.Month)
	assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(80)))
	assert.True(t, summary.Remaining.Equal(decimal.NewFromInt(420)))
	assert.Len(t, summary.Expenses, 1)

	_, err = f.svc.MonthSummary(ctx, "u-1", "2024-2")
	assert.ErrorIs(t, err, domain.ErrInvalidMonthKey)
}

func TestLedgerService_MonthReport_EmptyMonth(t *testing.T) {
	f := newLedgerFixture()

	_, _, err := f.svc.MonthReport(context.Background(), "u-1", "2024-02")

	var precondition *domain.PreconditionError
	require.True(t, errors.As(err, &precondition))
	assert.Equal(t, "No expenses to download for this month", precondition.Error())
}

func TestLedgerService_ArchiveReport(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.SaveExpenses(ctx, "u-1", []domain.Expense{expense("e1", "g", "80", "2024-02-03")}))

	_, err := f.svc.ArchiveReport(ctx, "u-1", "2024-02")
	assert.ErrorIs(t, err, domain.ErrArchiveUnavailable)

	archive := testutil.NewMockReportRepository()
	f.svc.SetReportArchive(archive, 5*time.Minute)

	archived, err := f.svc.ArchiveReport(ctx, "u-1", "2024-02")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(archived.Key, "reports/u-1/2024-02/"))
	assert.Equal(t, "Budget_2024-02_February_2024.xlsx", archived.FileName)
	assert.Contains(t, archived.URL, "expires=300")
	assert.Equal(t, time.Date(2024, 2, 20, 9, 5, 0, 0, time.UTC), archived.ExpiresAt)
	assert.NotEmpty(t, archive.Objects[archived.Key])
	assert.Equal(t, storage.XLSXContentType, archive.Types[archived.Key])
}
