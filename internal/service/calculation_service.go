package service

import (
	"sort"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculationService derives spending figures from category and expense
// collections. Every figure is recomputed from its inputs; nothing is cached.
type CalculationService struct{}

// NewCalculationService creates a new CalculationService
func NewCalculationService() *CalculationService {
	return &CalculationService{}
}

// ExpensesInMonth filters expenses to those dated within month
func (s *CalculationService) ExpensesInMonth(expenses []domain.Expense, month domain.MonthKey) []domain.Expense {
	result := make([]domain.Expense, 0)
	for _, e := range expenses {
		if month.Contains(e.Date) {
			result = append(result, e)
		}
	}
	return result
}

// CategorySpent sums the expenses attributed to categoryID, zero when there are none
func (s *CalculationService) CategorySpent(categoryID string, monthExpenses []domain.Expense) decimal.Decimal {
	spent := decimal.Zero
	for _, e := range monthExpenses {
		if e.CategoryID == categoryID {
			spent = spent.Add(e.Amount)
		}
	}
	return spent
}

// TotalBudget sums every category budget. Budgets are not month-scoped.
func (s *CalculationService) TotalBudget(categories []domain.Category) decimal.Decimal {
	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.Budget)
	}
	return total
}

// TotalSpent sums the amounts of the given expenses
func (s *CalculationService) TotalSpent(monthExpenses []domain.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range monthExpenses {
		total = total.Add(e.Amount)
	}
	return total
}

// Remaining is totalBudget - totalSpent and may be negative
func (s *CalculationService) Remaining(totalBudget, totalSpent decimal.Decimal) decimal.Decimal {
	return totalBudget.Sub(totalSpent)
}

// PercentageUsed is totalSpent/totalBudget*100, or zero when there is no budget
func (s *CalculationService) PercentageUsed(totalBudget, totalSpent decimal.Decimal) decimal.Decimal {
	return domain.Percentage(totalSpent, totalBudget)
}

// IsOverBudget reports whether spent strictly exceeds the category budget
func (s *CalculationService) IsOverBudget(category domain.Category, spent decimal.Decimal) bool {
	return spent.GreaterThan(category.Budget)
}

// SortByDateDesc returns a copy of expenses ordered most recent first. Expenses on
// the same date have no guaranteed relative order.
func (s *CalculationService) SortByDateDesc(expenses []domain.Expense) []domain.Expense {
	sorted := append([]domain.Expense(nil), expenses...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return sorted
}

// Breakdown pairs each category's spend with its color, skipping categories with
// nothing spent
func (s *CalculationService) Breakdown(categories []domain.Category, monthExpenses []domain.Expense) []domain.BreakdownSlice {
	slices := make([]domain.BreakdownSlice, 0)
	for _, c := range categories {
		spent := s.CategorySpent(c.ID, monthExpenses)
		if !spent.IsPositive() {
			continue
		}
		slices = append(slices, domain.BreakdownSlice{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Spent:      spent,
		})
	}
	return slices
}

// SummarizeCategory computes one category's figures for a month
func (s *CalculationService) SummarizeCategory(category domain.Category, monthExpenses []domain.Expense) domain.CategorySummary {
	spent := s.CategorySpent(category.ID, monthExpenses)
	summary := domain.CategorySummary{
		Category:   category,
		Spent:      spent,
		Remaining:  category.Budget.Sub(spent),
		Percentage: domain.Percentage(spent, category.Budget),
		OverBudget: s.IsOverBudget(category, spent),
		OverBy:     decimal.Zero,
	}
	if summary.OverBudget {
		summary.OverBy = spent.Sub(category.Budget)
	}
	return summary
}

// Summarize builds the full derived view of month from the current collections
func (s *CalculationService) Summarize(categories []domain.Category, allExpenses []domain.Expense, month domain.MonthKey) *domain.MonthSummary {
	monthExpenses := s.ExpensesInMonth(allExpenses, month)
	totalBudget := s.TotalBudget(categories)
	totalSpent := s.TotalSpent(monthExpenses)
	remaining := s.Remaining(totalBudget, totalSpent)

	categorySummaries := make([]domain.CategorySummary, len(categories))
	for i, c := range categories {
		categorySummaries[i] = s.SummarizeCategory(c, monthExpenses)
	}

	return &domain.MonthSummary{
		Month:          month,
		Label:          month.Label(),
		TotalBudget:    totalBudget,
		TotalSpent:     totalSpent,
		Remaining:      remaining,
		PercentageUsed: s.PercentageUsed(totalBudget, totalSpent),
		OverBudget:     remaining.IsNegative(),
		Categories:     categorySummaries,
		Breakdown:      s.Breakdown(categories, monthExpenses),
		Expenses:       s.SortByDateDesc(monthExpenses),
	}
}
