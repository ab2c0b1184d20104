package service

import (
	"fmt"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXReportWriter renders reports as single-sheet Excel workbooks
type XLSXReportWriter struct{}

// NewXLSXReportWriter creates a new XLSXReportWriter
func NewXLSXReportWriter() *XLSXReportWriter {
	return &XLSXReportWriter{}
}

// Write implements ReportWriter
func (w *XLSXReportWriter) Write(report *domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := report.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
	})
	if err != nil {
		return nil, fmt.Errorf("create amount style: %w", err)
	}

	header := make([]interface{}, len(report.Headers))
	for i, h := range report.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(report.Headers))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range report.Rows {
		rowNum := i + 2
		if row.IsBlank() {
			continue
		}
		values := []interface{}{row.Date, row.Category, row.Description, ""}
		if row.Amount != nil {
			values[3] = *row.Amount
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if row.Amount != nil {
			cell := fmt.Sprintf("D%d", rowNum)
			if err := f.SetCellStyle(sheet, cell, cell, amountStyle); err != nil {
				return nil, fmt.Errorf("style row %d: %w", rowNum, err)
			}
		}
	}

	for i, width := range report.ColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
