package domain

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// PasswordSymbols is the punctuation set a password must draw at least one symbol from
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

// ValidatePassword applies the account password policy. It returns one
// ValidationError per violated rule, in a stable order, or nil.
func ValidatePassword(password string) []*ValidationError {
	var (
		upper, lower, digit, symbol bool
		violations                  []*ValidationError
	)
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}

	add := func(message string) {
		violations = append(violations, &ValidationError{Field: "password", Message: message, Err: ErrWeakPassword})
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		add("Password must be at least 8 characters")
	}
	if !upper {
		add("Password must contain at least one uppercase letter")
	}
	if !lower {
		add("Password must contain at least one lowercase letter")
	}
	if !digit {
		add("Password must contain at least one number")
	}
	if !symbol {
		add("Password must contain at least one special character")
	}
	return violations
}
