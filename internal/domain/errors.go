package domain

import "fmt"

// Error types for consistent error handling across the ledger engine.
// Ledger precondition failures (insufficient funds/stock, duplicate
// keys) are reported as boolean results by the services; these types
// cover the boundaries where a real error value is needed.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidTransition indicates an illegal purchase status change.
type ErrInvalidTransition struct {
	From PurchaseStatus
	To   PurchaseStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// ErrEncoding indicates a record could not be encoded.
type ErrEncoding struct {
	Record  string
	Message string
}

func (e *ErrEncoding) Error() string {
	return fmt.Sprintf("encoding %s: %s", e.Record, e.Message)
}

// ErrDecoding indicates a malformed or truncated buffer at the
// persistence boundary.
type ErrDecoding struct {
	Record  string
	Offset  int
	Message string
}

func (e *ErrDecoding) Error() string {
	return fmt.Sprintf("decoding %s at offset %d: %s", e.Record, e.Offset, e.Message)
}

// ErrPersistence indicates a blob load/save failure.
type ErrPersistence struct {
	Op   string
	Path string
	Err  error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("persistence %s [%s]: %v", e.Op, e.Path, e.Err)
}

func (e *ErrPersistence) Unwrap() error {
	return e.Err
}
