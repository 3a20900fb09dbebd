package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCatalogUnavailable  = errors.New("catalog unavailable")
	ErrNoProductsAvailable = errors.New("no products available")
	ErrProductNotFound     = errors.New("product not found")
)

// ValidationError - structurally impossible input that cannot be coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid filter input: " + e.Reason
	}
	return fmt.Sprintf("invalid filter input: %s: %s", e.Field, e.Reason)
}

// CatalogUnavailableError wraps a failure of a catalog-backed collaborator.
type CatalogUnavailableError struct {
	Op  string
	Err error
}

func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("catalog unavailable (%s): %v", e.Op, e.Err)
}

func (e *CatalogUnavailableError) Unwrap() error { return e.Err }

func (e *CatalogUnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}
