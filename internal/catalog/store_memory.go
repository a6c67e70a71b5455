package catalog

import (
	"context"
	"sync"

	id "vitrine/pkg/domain"
	"vitrine/pkg/platform/sentinel"
)

// InMemoryStore holds a fixed product set. Used in tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[id.ProductID]Product
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{products: make(map[id.ProductID]Product)}
}

// Seed loads products into the store, replacing any with the same ID.
func (s *InMemoryStore) Seed(products ...Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.products[p.ID] = p
	}
}

func (s *InMemoryStore) GetProduct(_ context.Context, productID id.ProductID) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return Product{}, sentinel.ErrNotFound
	}
	return p, nil
}
