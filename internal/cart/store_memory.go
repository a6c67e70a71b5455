package cart

import (
	"context"
	"sync"

	id "vitrine/pkg/domain"
	"vitrine/pkg/platform/sentinel"
)

// Store persists carts per shopper session.
type Store interface {
	Get(ctx context.Context, sessionID id.SessionID) (Cart, error)
	Put(ctx context.Context, cart Cart) error
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// InMemoryStore keeps carts in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	carts map[id.SessionID]Cart
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{carts: make(map[id.SessionID]Cart)}
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return Cart{}, sentinel.ErrNotFound
	}
	return c.clone(), nil
}

func (s *InMemoryStore) Put(_ context.Context, cart Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.SessionID] = cart.clone()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
