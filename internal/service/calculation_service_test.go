package service

import (
	"testing"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groceries(budget int64) domain.Category {
	return domain.Category{ID: "g", Name: "Groceries", Budget: decimal.NewFromInt(budget), Color: "#10b981", Icon: "🛒"}
}

func expense(id, categoryID string, amount string, date string) domain.Expense {
	return domain.Expense{ID: id, CategoryID: categoryID, Amount: decimal.RequireFromString(amount), Date: date}
}

func TestCalculationService_TotalBudget_DecimalExact(t *testing.T) {
	svc := NewCalculationService()
	categories := []domain.Category{
		{ID: "a", Budget: decimal.RequireFromString("0.1")},
		{ID: "b", Budget: decimal.RequireFromString("0.2")},
		{ID: "c", Budget: decimal.Zero},
	}

	total := svc.TotalBudget(categories)

	assert.True(t, total.Equal(decimal.RequireFromString("0.3")), "got %s", total)
}

func TestCalculationService_CategorySpent_NoExpensesIsZero(t *testing.T) {
	svc := NewCalculationService()

	spent := svc.CategorySpent("nothing", []domain.Expense{expense("1", "g", "10", "2024-02-01")})

	assert.True(t, spent.IsZero())
}

func TestCalculationService_PercentageUsed_ZeroBudget(t *testing.T) {
	svc := NewCalculationService()

	pct := svc.PercentageUsed(decimal.Zero, decimal.NewFromInt(999))

	assert.True(t, pct.IsZero())
}

func TestCalculationService_IsOverBudget_Strict(t *testing.T) {
	svc := NewCalculationService()
	c := groceries(500)

	assert.False(t, svc.IsOverBudget(c, decimal.NewFromInt(500)))
	assert.True(t, svc.IsOverBudget(c, decimal.RequireFromString("500.01")))
	assert.False(t, svc.IsOverBudget(domain.Category{Budget: decimal.Zero}, decimal.Zero))
}

func TestCalculationService_ExpensesInMonth(t *testing.T) {
	svc := NewCalculationService()
	expenses := []domain.Expense{
		expense("1", "g", "1", "2024-02-01"),
		expense("2", "g", "1", "2024-03-01"),
		expense("3", "g", "1", "2024-02-29"),
	}

	inMonth := svc.ExpensesInMonth(expenses, "2024-02")

	require.Len(t, inMonth, 2)
	assert.Equal(t, "1", inMonth[0].ID)
	assert.Equal(t, "3", inMonth[1].ID)
}

func TestCalculationService_Summarize_WithinBudget(t *testing.T) {
	svc := NewCalculationService()
	categories := []domain.Category{groceries(500)}
	expenses := []domain.Expense{
		expense("1", "g", "120", "2024-02-03"),
		expense("2", "g", "80", "2024-02-10"),
		expense("3", "g", "999", "2024-01-10"),
	}

	summary := svc.Summarize(categories, expenses, "2024-02")

	assert.Equal(t, "200", summary.TotalSpent.String())
	assert.Equal(t, "300", summary.Remaining.String())
	assert.Equal(t, "40.0", summary.PercentageUsed.StringFixed(1))
	assert.False(t, summary.OverBudget)
	require.Len(t, summary.Categories, 1)
	assert.False(t, summary.Categories[0].OverBudget)
	assert.True(t, summary.Categories[0].OverBy.IsZero())
	assert.Equal(t, "February 2024", summary.Label)
}

func TestCalculationService_Summarize_OverBudget(t *testing.T) {
	svc := NewCalculationService()
	categories := []domain.Category{groceries(500)}
	expenses := []domain.Expense{expense("1", "g", "600", "2024-02-01")}

	summary := svc.Summarize(categories, expenses, "2024-02")

	assert.Equal(t, "-100", summary.Remaining.String())
	assert.True(t, summary.OverBudget)
	require.Len(t, summary.Categories, 1)
	assert.True(t, summary.Categories[0].OverBudget)
	assert.Equal(t, "100", summary.Categories[0].OverBy.String())
	assert.Equal(t, "120.00", summary.Categories[0].Percentage.StringFixed(2))
}

func TestCalculationService_Summarize_SortsMostRecentFirst(t *testing.T) {
	svc := NewCalculationService()
	expenses := []domain.Expense{
		expense("a", "g", "1", "2024-02-03"),
		expense("b", "g", "1", "2024-02-27"),
		expense("c", "g", "1", "2024-02-10"),
	}

	summary := svc.Summarize([]domain.Category{groceries(10)}, expenses, "2024-02")

	require.Len(t, summary.Expenses, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{summary.Expenses[0].ID, summary.Expenses[1].ID, summary.Expenses[2].ID})
}

func TestCalculationService_Breakdown_SkipsZeroSpend(t *testing.T) {
	svc := NewCalculationService()
	categories := domain.DefaultCategories()
	expenses := []domain.Expense{
		expense("1", "2", "30", "2024-02-03"),
		expense("2", "5", "45.50", "2024-02-04"),
		expense("3", "missing", "12", "2024-02-05"),
	}

	breakdown := svc.Breakdown(categories, expenses)

	require.Len(t, breakdown, 2)
	assert.Equal(t, "Transportation", breakdown[0].Name)
	assert.Equal(t, "#3b82f6", breakdown[0].Color)
	assert.Equal(t, "Dining Out", breakdown[1].Name)
	assert.Equal(t, "45.5", breakdown[1].Spent.String())
}

func TestCalculationService_Summarize_DanglingExpenseCountsTowardTotal(t *testing.T) {
	svc := NewCalculationService()
	expenses := []domain.Expense{expense("1", "deleted", "25", "2024-02-03")}

	summary := svc.Summarize([]domain.Category{groceries(100)}, expenses, "2024-02")

	assert.Equal(t, "25", summary.TotalSpent.String())
	assert.True(t, summary.Categories[0].Spent.IsZero())
	assert.Empty(t, summary.Breakdown)
}
