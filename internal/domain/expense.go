package domain

import "github.com/shopspring/decimal"

// DateLayout is the calendar date format of Expense.Date
const DateLayout = "2006-01-02"

// Expense is a single dated spending record. CategoryID is a weak reference and
// may point at a category that no longer exists.
type Expense struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// ExpenseFields holds the caller-supplied fields of a new expense
type ExpenseFields struct {
	CategoryID  string
	Amount      decimal.Decimal
	Description string
	Date        string
}

// Month returns the month key the expense belongs to
func (e Expense) Month() MonthKey {
	return MonthKeyOf(e.Date)
}
