package store

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrTableNotFound           = errors.New("table not found")
	ErrTableExists             = errors.New("table already exists")
	ErrColumnNotFound          = errors.New("column not found")
	ErrFunctionNotFound        = errors.New("function not found")
	ErrIndexNotSupported       = errors.New("index is not supported")
	ErrTransactionNotSupported = errors.New("transaction is not supported")
	ErrStoreClosed             = errors.New("store is closed")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op    string // Operation that failed (e.g., "FetchData", "InsertSchema")
	Table string // Table involved (if applicable)
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// NewError builds a StoreError for the given operation and table.
func NewError(op, table string, cause error) *StoreError {
	return &StoreError{Op: op, Table: table, Cause: cause}
}
