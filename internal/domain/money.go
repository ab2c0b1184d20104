package domain

import "github.com/shopspring/decimal"

// Budgets and amounts travel as JSON numbers on the wire.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// hundred is used for percentage calculations
var hundred = decimal.NewFromInt(100)

// Percentage returns part/whole*100, or zero when whole is not positive
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// FormatCurrency renders an amount the way budget summaries display it, e.g. "$12.50"
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
