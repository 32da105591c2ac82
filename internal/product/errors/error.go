// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateName is returned when an update would give a product a name already held by another product.
	ErrDuplicateName = errors.New("product name already exists")
	// ErrInsertFailed is returned when the store reports that no row was inserted.
	ErrInsertFailed = errors.New("product was not inserted")
)
