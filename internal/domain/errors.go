package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrInvalidMonthKey    = errors.New("month must be formatted as YYYY-MM")
	ErrWeakPassword       = errors.New("password does not meet the password policy")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrArchiveUnavailable = errors.New("report archive is not configured")
)

// ErrNoExpensesToExport is returned when a report is requested for a month with no expenses
var ErrNoExpensesToExport = &PreconditionError{Message: "No expenses to download for this month"}

// ValidationError reports malformed input such as a missing field or a weak password.
// It is reported to the caller at the boundary that detected it.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError reports bad credentials or an invalid session. Callers must re-authenticate;
// nothing retries or refreshes automatically.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnauthorized
}

// SyncError reports a failed push of a collection to the remote store
type SyncError struct {
	Kind       CollectionKind
	StatusCode int
	Err        error
}

func (e *SyncError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("push %s: unexpected status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("push %s: %v", e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// PreconditionError reports a request the caller should not have made in the current
// state, detected before any side effect.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// IsAuthError reports whether err is, or wraps, an AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
