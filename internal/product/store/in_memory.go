package store

import (
	"context"
	"sort"
	"sync"

	"github.com/abgdnv/giftcatalog/internal/product/errors"
)

var _ ProductStore = (*InMemory)(nil)

// InMemory implements ProductStore using an in-memory map.
// A secondary index maps each name to the IDs holding it so name checks do not scan the map.
type InMemory struct {
	mu       sync.RWMutex
	products map[int64]Product
	byName   map[string]map[int64]struct{}
	nextID   int64
}

// NewInMemoryStore creates a new in-memory ProductStore, optionally pre-populated with seed products.
// Seed entries without an ID are assigned the next free one.
func NewInMemoryStore(seed ...Product) *InMemory {
	s := &InMemory{
		products: make(map[int64]Product),
		byName:   make(map[string]map[int64]struct{}),
		nextID:   1,
	}
	for _, p := range seed {
		if p.ID <= 0 {
			p.ID = s.nextID
		}
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
		if old, ok := s.products[p.ID]; ok {
			s.unindex(old)
		}
		s.put(p)
	}
	return s
}

// Create creates a new product and returns it.
func (s *InMemory) Create(_ context.Context, name string, price int64, imageURL string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := Product{
		ID:       s.nextID,
		Name:     name,
		Price:    price,
		ImageURL: imageURL,
	}
	s.nextID++
	s.put(product)

	return &product, nil
}

// FindAll retrieves all products ordered by ID.
func (s *InMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// FindByID retrieves a product by its ID.
func (s *InMemory) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

// Update checks existence, checks the name and writes the product under a single write lock.
func (s *InMemory) Update(_ context.Context, id int64, name string, price int64, imageURL string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	if s.heldByOther(id, name) {
		return nil, errors.ErrDuplicateName
	}

	s.unindex(current)
	updated := Product{
		ID:       id,
		Name:     name,
		Price:    price,
		ImageURL: imageURL,
	}
	s.put(updated)

	return &updated, nil
}

// DeleteAll removes every product.
func (s *InMemory) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[int64]Product)
	s.byName = make(map[string]map[int64]struct{})
	return nil
}

// DeleteByID deletes a product by its ID.
func (s *InMemory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return errors.ErrProductNotFound
	}
	s.unindex(p)
	delete(s.products, id)
	return nil
}

// DeleteByIDs deletes the products with the given IDs, skipping the ones that do not exist.
func (s *InMemory) DeleteByIDs(_ context.Context, ids []int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]int64, 0, len(ids))
	for _, id := range ids {
		p, exists := s.products[id]
		if !exists {
			continue
		}
		s.unindex(p)
		delete(s.products, id)
		removed = append(removed, id)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed, nil
}

// ExistsByName reports whether any product has the given name.
func (s *InMemory) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byName[name]) > 0, nil
}

// ExistsSameName reports whether a product other than excludeID has the given name.
func (s *InMemory) ExistsSameName(_ context.Context, excludeID int64, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.heldByOther(excludeID, name), nil
}

// Ping always succeeds for the in-memory store.
func (s *InMemory) Ping(_ context.Context) error {
	return nil
}

// heldByOther must be called with s.mu held.
func (s *InMemory) heldByOther(id int64, name string) bool {
	for holder := range s.byName[name] {
		if holder != id {
			return true
		}
	}
	return false
}

// put must be called with s.mu held.
func (s *InMemory) put(p Product) {
	s.products[p.ID] = p
	ids, ok := s.byName[p.Name]
	if !ok {
		ids = make(map[int64]struct{})
		s.byName[p.Name] = ids
	}
	ids[p.ID] = struct{}{}
}

// unindex must be called with s.mu held.
func (s *InMemory) unindex(p Product) {
	ids := s.byName[p.Name]
	delete(ids, p.ID)
	if len(ids) == 0 {
		delete(s.byName, p.Name)
	}
}
