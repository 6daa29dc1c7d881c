package services

import (
	"errors"
	"fmt"
)

// Sentinel errors so callers can branch on the business failure.
var (
	// ErrInsufficientStock: requested quantity exceeds the available
	// product quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidReturnItem: product missing from the original sale, or
	// return quantity exceeds the originally sold quantity.
	ErrInvalidReturnItem = errors.New("invalid return item")

	// ErrDocumentValidation: a type-specific document rule is unmet
	// (missing/unpaid invoice, missing cash register, bad original
	// sale, double return, customer mismatch, inverted report range).
	ErrDocumentValidation = errors.New("document validation failed")

	// ErrReferencedEntityProtected: the record is still referenced by
	// other records and cannot be deleted.
	ErrReferencedEntityProtected = errors.New("entity is referenced by other records")
)

// ValidationError wraps a sentinel with a human-readable reason.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func validationf(sentinel error, format string, args ...any) error {
	return &ValidationError{Err: sentinel, Details: fmt.Sprintf(format, args...)}
}
