package domain

// ReportRow is one line of a tabular report. Amount is nil for rows without a
// numeric value, and blank rows have every field empty.
type ReportRow struct {
	Date        string
	Category    string
	Description string
	Amount      *float64
}

// IsBlank reports whether the row is a separator
func (r ReportRow) IsBlank() bool {
	return r.Date == "" && r.Category == "" && r.Description == "" && r.Amount == nil
}

// Report is a rendered month export: one sheet of rows plus presentation hints
type Report struct {
	Month        MonthKey
	FileName     string
	SheetName    string
	Headers      []string
	Rows         []ReportRow
	ColumnWidths []float64
}
