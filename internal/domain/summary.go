package domain

import "github.com/shopspring/decimal"

// CategorySummary is one category's figures for a month
type CategorySummary struct {
	Category   Category        `json:"category"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	OverBudget bool            `json:"overBudget"`
	OverBy     decimal.Decimal `json:"overBy"`
}

// BreakdownSlice pairs a category's spend with its display color
type BreakdownSlice struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Spent      decimal.Decimal `json:"spent"`
}

// MonthSummary is the derived view of one month. It is never stored.
type MonthSummary struct {
	Month          MonthKey          `json:"month"`
	Label          string            `json:"label"`
	TotalBudget    decimal.Decimal   `json:"totalBudget"`
	TotalSpent     decimal.Decimal   `json:"totalSpent"`
	Remaining      decimal.Decimal   `json:"remaining"`
	PercentageUsed decimal.Decimal   `json:"percentageUsed"`
	OverBudget     bool              `json:"overBudget"`
	Categories     []CategorySummary `json:"categories"`
	Breakdown      []BreakdownSlice  `json:"breakdown"`
	Expenses       []Expense         `json:"expenses"`
}
