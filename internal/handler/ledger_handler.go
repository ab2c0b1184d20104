package handler

import (
	"net/http"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/middleware"
	"github.com/dafibh/budget-ledger/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// LedgerHandler serves the stored category and expense collections
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// CategoriesPayload is the categories collection envelope
type CategoriesPayload struct {
	Categories []domain.Category `json:"categories"`
}

// ExpensesPayload is the expenses collection envelope
type ExpensesPayload struct {
	Expenses []domain.Expense `json:"expenses"`
}

// saveCategoriesRequest distinguishes an absent collection from an empty one
type saveCategoriesRequest struct {
	Categories *[]domain.Category `json:"categories"`
}

type saveExpensesRequest struct {
	Expenses *[]domain.Expense `json:"expenses"`
}

// GetCategories godoc
// @Summary Get categories
// @Description Return the caller's stored categories, empty when none were saved
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CategoriesPayload
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /categories [get]
func (h *LedgerHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c)
	}

	categories, err := h.ledgerService.GetCategories(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, CategoriesPayload{Categories: categories})
}

// SaveCategories godoc
// @Summary Replace categories
// @Description Overwrite the caller's entire category collection
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoriesPayload true "Full category collection"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /categories [post]
func (h *LedgerHandler) SaveCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c)
	}

	var req saveCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}
	if req.Categories == nil {
		return NewValidationError(c, "categories is required")
	}

	if err := h.ledgerService.SaveCategories(c.Request().Context(), userID, *req.Categories); err != nil {
		return respondError(c, err, "Failed to save categories")
	}

	log.Debug().Str("user_id", userID).Int("count", len(*req.Categories)).Msg("Categories saved")
	return c.JSON(http.StatusOK, MessageResponse{Message: "Categories saved successfully"})
}

// GetExpenses godoc
// @Summary Get expenses
// @Description Return the caller's stored expenses, empty when none were saved
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ExpensesPayload
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses [get]
func (h *LedgerHandler) GetExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c)
	}

	expenses, err := h.ledgerService.GetExpenses(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch expenses")
	}
	return c.JSON(http.StatusOK, ExpensesPayload{Expenses: expenses})
}

// SaveExpenses godoc
// @Summary Replace expenses
// @Description Overwrite the caller's entire expense collection
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpensesPayload true "Full expense collection"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses [post]
func (h *LedgerHandler) SaveExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c)
	}

	var req saveExpensesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}
	if req.Expenses == nil {
		return NewValidationError(c, "expenses is required")
	}

	if err := h.ledgerService.SaveExpenses(c.Request().Context(), userID, *req.Expenses); err != nil {
		return respondError(c, err, "Failed to save expenses")
	}

	log.Debug().Str("user_id", userID).Int("count", len(*req.Expenses)).Msg("Expenses saved")
	return c.JSON(http.StatusOK, MessageResponse{Message: "Expenses saved successfully"})
}

// GetSummary godoc
// @Summary Month summary
// @Description Aggregate the stored ledger for one month
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} domain.MonthSummary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /summary [get]
func (h *LedgerHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c)
	}

	summary, err := h.ledgerService.MonthSummary(c.Request().Context(), userID, c.QueryParam("month"))
	if err != nil {
		return respondError(c, err, "Failed to build summary")
	}
	return c.JSON(http.StatusOK, summary)
}
