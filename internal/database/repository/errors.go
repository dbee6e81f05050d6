package repository

import (
	"errors"
	"strings"
)

// Structural invariant errors. Each is checked and raised before any
// mutation is applied.
var (
	// ErrCyclicReference rejects a reparent that would make a category
	// its own ancestor.
	ErrCyclicReference = errors.New("cyclic category reference")
	// ErrHasChildren rejects deleting a category that other categories
	// list as parent.
	ErrHasChildren = errors.New("category has child categories")
	// ErrInUse rejects deleting a category referenced by an expense.
	ErrInUse = errors.New("category is referenced by expenses")
	// ErrNotFound marks a missing row where the operation requires one.
	ErrNotFound = errors.New("not found")
	// ErrMissingField marks a write issued without a required reference.
	ErrMissingField = errors.New("required field missing")
)

// ValidationError carries the full list of violation messages from
// ValidateExpense, so callers can present them together.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "expense validation failed: " + strings.Join(e.Violations, "; ")
}
