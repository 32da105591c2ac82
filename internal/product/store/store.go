// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// Product is a catalog entry as it is persisted by a ProductStore.
type Product struct {
	ID       int64
	Name     string
	Price    int64
	ImageURL string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// Create adds a new product and returns it with the generated ID.
	// Returns ErrInsertFailed if the store did not insert a row.
	Create(ctx context.Context, name string, price int64, imageURL string) (*Product, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// Update overwrites name, price and image URL of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID and
	// ErrDuplicateName if another product already holds the name.
	Update(ctx context.Context, id int64, name string, price int64, imageURL string) (*Product, error)

	// DeleteAll removes every product.
	DeleteAll(ctx context.Context) error

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteByIDs removes the products with the given IDs, ignoring absent ones.
	// Returns the IDs that were actually removed, in ascending order.
	DeleteByIDs(ctx context.Context, ids []int64) ([]int64, error)

	// ExistsByName reports whether any product has exactly the given name.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// ExistsSameName reports whether a product other than excludeID has exactly the given name.
	ExistsSameName(ctx context.Context, excludeID int64, name string) (bool, error)

	// Ping checks that the underlying storage is reachable.
	Ping(ctx context.Context) error
}
