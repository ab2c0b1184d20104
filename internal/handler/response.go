package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges a write
type MessageResponse struct {
	Message string `json:"message"`
}

// NewErrorResponse writes status with an {error} body
func NewErrorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{Error: message})
}

// NewValidationError creates a 400 response
func NewValidationError(c echo.Context, message string) error {
	return NewErrorResponse(c, http.StatusBadRequest, message)
}

// NewUnauthorizedError creates a 401 response
func NewUnauthorizedError(c echo.Context) error {
	return NewErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
}

// NewInternalError creates a 500 response
func NewInternalError(c echo.Context, message string) error {
	return NewErrorResponse(c, http.StatusInternalServerError, message)
}

// respondError maps a service error onto a status code. Anything unrecognised is
// logged and reported as fallback with a 500.
func respondError(c echo.Context, err error, fallback string) error {
	var validationErr *domain.ValidationError
	var preconditionErr *domain.PreconditionError

	switch {
	case errors.As(err, &validationErr):
		return NewValidationError(c, validationErr.Message)
	case errors.Is(err, domain.ErrInvalidMonthKey):
		return NewValidationError(c, err.Error())
	case domain.IsAuthError(err):
		return NewUnauthorizedError(c)
	case errors.As(err, &preconditionErr):
		return NewErrorResponse(c, http.StatusUnprocessableEntity, preconditionErr.Message)
	case errors.Is(err, domain.ErrArchiveUnavailable):
		return NewErrorResponse(c, http.StatusNotImplemented, err.Error())
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(fallback)
	return NewInternalError(c, fallback)
}

// HTTPErrorHandler renders errors that escape a handler, such as routing misses
// and recovered panics, with the same {error} body as every other failure
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
	} else {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled error")
	}

	message := http.StatusText(status)
	if httpErr != nil {
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = NewErrorResponse(c, status, message)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to write error response")
	}
}
