package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/util"
	"github.com/shopspring/decimal"
)

// Report layout
const (
	reportTotalLabel        = "TOTAL"
	reportSummaryLabel      = "Budget Summary"
	reportTotalBudgetLabel  = "Total Budget"
	reportEmptyDescription  = "-"
	reportFileNamePrefix    = "Budget"
	reportFileNameExtension = ".xlsx"
)

var (
	reportHeaders      = []string{"Date", "Category", "Description", "Amount"}
	reportColumnWidths = []float64{12, 20, 30, 12}
)

// ReportService turns a month of expenses into a tabular export document
type ReportService struct {
	calc   *CalculationService
	writer ReportWriter
}

// ReportWriter encodes a report document into a file format
type ReportWriter interface {
	Write(report *domain.Report) ([]byte, error)
}

// NewReportService creates a new ReportService
func NewReportService(calc *CalculationService, writer ReportWriter) *ReportService {
	return &ReportService{calc: calc, writer: writer}
}

// Build lays out the report for month. An empty month is a precondition failure
// and no document is produced.
func (s *ReportService) Build(monthExpenses []domain.Expense, categories []domain.Category, month domain.MonthKey) (*domain.Report, error) {
	if len(monthExpenses) == 0 {
		return nil, domain.ErrNoExpensesToExport
	}
	if _, err := month.Time(); err != nil {
		return nil, err
	}

	lookup := domain.NewCategoryLookup(categories)

	// Chronological, unlike the most-recent-first display order
	sorted := append([]domain.Expense(nil), monthExpenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	rows := make([]domain.ReportRow, 0, len(sorted)+len(categories)+6)
	for _, e := range sorted {
		description := e.Description
		if description == "" {
			description = reportEmptyDescription
		}
		rows = append(rows, domain.ReportRow{
			Date:        util.FormatShortDate(e.Date),
			Category:    lookup.Name(e.CategoryID),
			Description: description,
			Amount:      amountCell(e.Amount),
		})
	}

	totalSpent := s.calc.TotalSpent(monthExpenses)
	totalBudget := s.calc.TotalBudget(categories)

	rows = append(rows,
		domain.ReportRow{},
		domain.ReportRow{Description: reportTotalLabel, Amount: amountCell(totalSpent)},
		domain.ReportRow{},
		domain.ReportRow{Category: reportSummaryLabel},
	)

	for _, c := range categories {
		spent := s.calc.CategorySpent(c.ID, monthExpenses)
		if !spent.IsPositive() && !c.Budget.IsPositive() {
			continue
		}
		rows = append(rows, domain.ReportRow{
			Category:    c.Name,
			Description: fmt.Sprintf("%s / %s", domain.FormatCurrency(spent), domain.FormatCurrency(c.Budget)),
			Amount:      amountCell(spent),
		})
	}

	rows = append(rows,
		domain.ReportRow{},
		domain.ReportRow{
			Category:    reportTotalBudgetLabel,
			Description: fmt.Sprintf("%s / %s", domain.FormatCurrency(totalSpent), domain.FormatCurrency(totalBudget)),
			Amount:      amountCell(totalBudget),
		},
	)

	label := month.Label()
	return &domain.Report{
		Month:        month,
		FileName:     ReportFileName(month),
		SheetName:    label,
		Headers:      append([]string(nil), reportHeaders...),
		Rows:         rows,
		ColumnWidths: append([]float64(nil), reportColumnWidths...),
	}, nil
}

// Render encodes report with the configured writer
func (s *ReportService) Render(report *domain.Report) ([]byte, error) {
	data, err := s.writer.Write(report)
	if err != nil {
		return nil, fmt.Errorf("render report %s: %w", report.FileName, err)
	}
	return data, nil
}

// Export filters allExpenses to month, builds the report and renders it
func (s *ReportService) Export(categories []domain.Category, allExpenses []domain.Expense, month domain.MonthKey) (*domain.Report, []byte, error) {
	report, err := s.Build(s.calc.ExpensesInMonth(allExpenses, month), categories, month)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.Render(report)
	if err != nil {
		return nil, nil, err
	}
	return report, data, nil
}

// ReportFileName derives the export file name, e.g. "Budget_2024-02_February_2024.xlsx"
func ReportFileName(month domain.MonthKey) string {
	label := strings.ReplaceAll(month.Label(), " ", "_")
	return fmt.Sprintf("%s_%s_%s%s", reportFileNamePrefix, month, label, reportFileNameExtension)
}

func amountCell(amount decimal.Decimal) *float64 {
	v := amount.InexactFloat64()
	return &v
}
