package store

import (
	"context"
	"sync"

	"vitrine/internal/storefront/models"
	id "vitrine/pkg/domain"
	"vitrine/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in process memory. Used in tests and
// single-node development setups.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[id.ShopID]models.ConfigurationDocument
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[id.ShopID]models.ConfigurationDocument)}
}

func (s *InMemoryStore) Load(_ context.Context, shopID id.ShopID) (models.ConfigurationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[shopID]
	if !ok {
		return models.ConfigurationDocument{}, sentinel.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *InMemoryStore) Save(_ context.Context, shopID id.ShopID, doc models.ConfigurationDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[shopID] = doc.Clone()
	return nil
}
