package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCategories_ReturnsFreshCopy(t *testing.T) {
	first := DefaultCategories()
	first[0].Name = "Changed"

	second := DefaultCategories()
	require.Len(t, second, 5)
	assert.Equal(t, "Groceries", second[0].Name)
	assert.Equal(t, "500", second[0].Budget.String())
}

func TestCategoryPatch_Apply(t *testing.T) {
	c := Category{ID: "1", Name: "Groceries", Budget: decimal.NewFromInt(500), Color: "#10b981", Icon: "🛒"}
	name := "Food"
	budget := decimal.NewFromInt(650)

	CategoryPatch{Name: &name, Budget: &budget}.Apply(&c)

	assert.Equal(t, "1", c.ID)
	assert.Equal(t, "Food", c.Name)
	assert.True(t, c.Budget.Equal(budget))
	assert.Equal(t, "#10b981", c.Color)
	assert.Equal(t, "🛒", c.Icon)
}

func TestCategoryLookup_ToleratesDanglingReference(t *testing.T) {
	lookup := NewCategoryLookup(DefaultCategories())

	assert.Equal(t, "Utilities", lookup.Name("4"))
	assert.Equal(t, UnknownCategoryName, lookup.Name("deleted"))
}

func TestExpense_JSONUsesNumbers(t *testing.T) {
	e := Expense{ID: "a", CategoryID: "1", Amount: decimal.RequireFromString("12.5"), Date: "2024-02-03"}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","categoryId":"1","amount":12.5,"description":"","date":"2024-02-03"}`, string(data))

	var decoded Expense
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","categoryId":"2","amount":80,"description":"bus","date":"2024-02-10"}`), &decoded))
	assert.True(t, decoded.Amount.Equal(decimal.NewFromInt(80)))
}

func TestPercentage_ZeroWhole(t *testing.T) {
	assert.True(t, Percentage(decimal.NewFromInt(50), decimal.Zero).IsZero())
	assert.Equal(t, "40.00", Percentage(decimal.NewFromInt(200), decimal.NewFromInt(500)).StringFixed(2))
	assert.Equal(t, "$12.50", FormatCurrency(decimal.RequireFromString("12.5")))
}

func TestValidatePassword(t *testing.T) {
	assert.Empty(t, ValidatePassword("Str0ng!pass"))

	violations := ValidatePassword("short")
	require.Len(t, violations, 4)
	assert.Equal(t, "Password must be at least 8 characters", violations[0].Message)
	for _, v := range violations {
		assert.True(t, errors.Is(v, ErrWeakPassword))
		assert.Equal(t, "password", v.Field)
	}

	violations = ValidatePassword("NoSymbols123")
	require.Len(t, violations, 1)
	assert.Equal(t, "Password must contain at least one special character", violations[0].Message)
}

func TestErrorTaxonomy(t *testing.T) {
	authErr := &AuthError{Message: "Invalid login credentials"}
	assert.True(t, errors.Is(authErr, ErrUnauthorized))
	assert.True(t, IsAuthError(errors.Join(errors.New("sign in"), authErr)))

	validationErr := NewValidationError("email", "Email is required")
	assert.True(t, errors.Is(validationErr, ErrInvalidInput))
	assert.Equal(t, "email: Email is required", validationErr.Error())

	syncErr := &SyncError{Kind: CollectionExpenses, StatusCode: 500}
	assert.Equal(t, "push expenses: unexpected status 500", syncErr.Error())

	var precondition *PreconditionError
	assert.True(t, errors.As(ErrNoExpensesToExport, &precondition))
}

func TestCollectionKey(t *testing.T) {
	assert.Equal(t, "user:abc:categories", CollectionKey("abc", CollectionCategories))
	assert.Equal(t, "user:abc:expenses", CollectionKey("abc", CollectionExpenses))
	assert.False(t, CollectionKind("budgets").Valid())
}
