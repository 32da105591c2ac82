// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/giftcatalog/internal/product/store"
	"github.com/abgdnv/giftcatalog/pkg/messaging"
	"github.com/abgdnv/giftcatalog/pkg/messaging/events"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create adds a new product to the catalog.
	// Returns ErrInsertFailed if the store did not insert the product.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// Update overwrites name, price and image URL of a product.
	// Returns ErrProductNotFound if no product exists with the given ID and
	// ErrDuplicateName if another product already has the requested name.
	Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error)

	// DeleteAll removes every product.
	DeleteAll(ctx context.Context) error

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteByIDs removes the listed products; unknown IDs are ignored.
	// Returns the number of removed products.
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// ExistsByName reports whether a product with exactly this name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// ExistsSameName reports whether a product other than excludeID has exactly this name.
	ExistsSameName(ctx context.Context, excludeID int64, name string) (bool, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided repository and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Price    int64  `json:"price"    validate:"min=0"`
	ImageURL string `json:"imageUrl" validate:"max=2048"`
}

// ProductUpdateDto represents the data transfer object for updating a product.
type ProductUpdateDto struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Price    int64  `json:"price"    validate:"min=0"`
	ImageURL string `json:"imageUrl" validate:"max=2048"`
}

// DeleteIDsDto carries the IDs of a batch delete.
type DeleteIDsDto struct {
	IDs []int64 `json:"ids" validate:"required"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl"`
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, product.Name, product.Price, product.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreatedEvent{ProductID: p.ID, Name: p.Name, OccurredAt: time.Now().UTC()})
	return toDto(p), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	return toDto(product), nil
}

// Update modifies an existing product's details and returns the updated product as a ProductDto.
func (s *Service) Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, id, product.Name, product.Price, product.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	s.publish(ctx, events.ProductUpdatedEvent{ProductID: updated.ID, Name: updated.Name, OccurredAt: time.Now().UTC()})
	return toDto(updated), nil
}

// DeleteAll removes all products.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.repository.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete all products: %w", err)
	}

	s.publish(ctx, events.ProductsClearedEvent{OccurredAt: time.Now().UTC()})
	return nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}

	s.publish(ctx, events.ProductsDeletedEvent{IDs: []int64{id}, OccurredAt: time.Now().UTC()})
	return nil
}

// DeleteByIDs deletes the products with the given IDs and returns how many were removed.
func (s *Service) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	removed, err := s.repository.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete products %v: %w", ids, err)
	}

	if len(removed) > 0 {
		s.publish(ctx, events.ProductsDeletedEvent{IDs: removed, OccurredAt: time.Now().UTC()})
	}
	return int64(len(removed)), nil
}

// ExistsByName reports whether a product with the given name exists.
func (s *Service) ExistsByName(ctx context.Context, name string) (bool, error) {
	exists, err := s.repository.ExistsByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check product name %q: %w", name, err)
	}
	return exists, nil
}

// ExistsSameName reports whether a product other than excludeID has the given name.
func (s *Service) ExistsSameName(ctx context.Context, excludeID int64, name string) (bool, error) {
	exists, err := s.repository.ExistsSameName(ctx, excludeID, name)
	if err != nil {
		return false, fmt.Errorf("failed to check product name %q: %w", name, err)
	}
	return exists, nil
}

// Ping checks the store connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}

// publish sends the event and only logs a failure; the mutation has already been committed.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		ImageURL: product.ImageURL,
	}
}
