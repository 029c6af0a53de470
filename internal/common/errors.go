// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrFileNotFound  = errors.New("file not found")
	ErrNoHeaderRow   = errors.New("no header row found")
	ErrNoSheetsFound = errors.New("no usable sheet found")

	// Normalization errors.
	ErrMissingColumns  = errors.New("required columns missing")
	ErrNoRowsExtracted = errors.New("no rows extracted")

	// Audit errors.
	ErrRowCountMismatch = errors.New("result row count does not match input")
	ErrUnflaggedRows    = errors.New("rows missing an audit flag")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents a fatal error shown to the user as a plain
// description of what was expected vs. found, with an actionable fix.
type UserError struct {
	Err         error
	UserMessage string
	Fix         string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-facing error with a fix suggestion.
func NewUserError(userMessage, fix string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Fix:         fix,
		Err:         err,
	}
}

// FixSuggestion extracts the fix hint from an error chain, if any.
func FixSuggestion(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Fix
	}
	return ""
}
