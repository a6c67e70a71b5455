package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "vitrine/pkg/domain"
	"vitrine/pkg/platform/sentinel"
)

const (
	cartKeyPrefix = "cart:session:"

	// cartTTL bounds how long an untouched cart survives. Generous compared
	// to the abandonment window so the abandonment payload can still read
	// the cart it describes.
	cartTTL = 7 * 24 * time.Hour
)

// RedisStore is a Redis-backed cart store for multi-instance deployments.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(sessionID id.SessionID) string {
	return cartKeyPrefix + string(sessionID)
}

func (s *RedisStore) Get(ctx context.Context, sessionID id.SessionID) (Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart %s: %w", sessionID, err)
	}
	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return Cart{}, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	if cart.Lines == nil {
		cart.Lines = make(map[id.ProductID]Line)
	}
	return cart, nil
}

func (s *RedisStore) Put(ctx context.Context, cart Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.SessionID, err)
	}
	if err := s.client.Set(ctx, cartKey(cart.SessionID), raw, cartTTL).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", cart.SessionID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	return s.client.Del(ctx, cartKey(sessionID)).Err()
}
