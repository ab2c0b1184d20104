package handler

import (
	"fmt"
	"net/http"

	"github.com/dafibh/budget-ledger/internal/middleware"
	"github.com/dafibh/budget-ledger/internal/repository/storage"
	"github.com/dafibh/budget-ledger/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves month spreadsheet exports
type ReportHandler struct {
	ledgerService *service.LedgerService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(ledgerService *service.LedgerService) *ReportHandler {
	return &ReportHandler{ledgerService: ledgerService}
}

// Download godoc
// @Summary Download month report
// @Description Render the month's expenses and budget summary as an xlsx workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month path string true "Month (YYYY-MM)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/{month} [get]
func (h *ReportHandler) Download(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c)
	}

	report, data, err := h.ledgerService.MonthReport(c.Request().Context(), userID, c.Param("month"))
	if err != nil {
		return respondError(c, err, "Failed to export report")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.FileName))
	return c.Blob(http.StatusOK, storage.XLSXContentType, data)
}

// Archive godoc
// @Summary Archive month report
// @Description Upload the month's report to object storage and return a time-limited download link
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param month path string true "Month (YYYY-MM)"
// @Success 200 {object} service.ArchivedReport
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 501 {object} ErrorResponse
// @Router /reports/{month}/archive [post]
func (h *ReportHandler) Archive(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c)
	}

	archived, err := h.ledgerService.ArchiveReport(c.Request().Context(), userID, c.Param("month"))
	if err != nil {
		return respondError(c, err, "Failed to archive report")
	}

	log.Info().Str("user_id", userID).Str("file", archived.FileName).Msg("Report archive link issued")
	return c.JSON(http.StatusOK, archived)
}
