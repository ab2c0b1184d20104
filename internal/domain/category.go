package domain

import "github.com/shopspring/decimal"

// UnknownCategoryName is shown for expenses whose category no longer exists
const UnknownCategoryName = "Unknown"

// Category is a named, budgeted spending bucket. Budgets are evergreen: the same
// budget applies to every month.
type Category struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
	Color  string          `json:"color"`
	Icon   string          `json:"icon"`
}

// CategoryFields holds the caller-supplied fields of a new category
type CategoryFields struct {
	Name   string
	Budget decimal.Decimal
	Color  string
	Icon   string
}

// CategoryPatch holds a partial category update; nil fields are left untouched
type CategoryPatch struct {
	Name   *string
	Budget *decimal.Decimal
	Color  *string
	Icon   *string
}

// Apply merges the non-nil patch fields into c
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Budget != nil {
		c.Budget = *p.Budget
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
}

// DefaultCategories returns a fresh copy of the category set used by a signed-out
// ledger and by accounts that have never stored categories.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Groceries", Budget: decimal.NewFromInt(500), Color: "#10b981", Icon: "🛒"},
		{ID: "2", Name: "Transportation", Budget: decimal.NewFromInt(200), Color: "#3b82f6", Icon: "🚗"},
		{ID: "3", Name: "Entertainment", Budget: decimal.NewFromInt(150), Color: "#8b5cf6", Icon: "🎬"},
		{ID: "4", Name: "Utilities", Budget: decimal.NewFromInt(300), Color: "#f59e0b", Icon: "⚡"},
		{ID: "5", Name: "Dining Out", Budget: decimal.NewFromInt(250), Color: "#ef4444", Icon: "🍽️"},
	}
}

// CategoryLookup resolves category ids to categories, tolerating dangling references
type CategoryLookup map[string]Category

// NewCategoryLookup indexes categories by id
func NewCategoryLookup(categories []Category) CategoryLookup {
	lookup := make(CategoryLookup, len(categories))
	for _, c := range categories {
		lookup[c.ID] = c
	}
	return lookup
}

// Name returns the category name for id, or UnknownCategoryName when id is dangling
func (l CategoryLookup) Name(id string) string {
	if c, ok := l[id]; ok {
		return c.Name
	}
	return UnknownCategoryName
}
