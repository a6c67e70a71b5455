package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"vitrine/internal/storefront/models"
	id "vitrine/pkg/domain"
	"vitrine/pkg/platform/sentinel"
)

// Redis key prefix for configuration documents.
const configKeyPrefix = "shop:config:"

// RedisStore is a Redis-backed configuration store. Documents are stored as
// one JSON value per shop; SET semantics give the last-write-wins contract
// for free.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed configuration store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func configKey(shopID id.ShopID) string {
	return configKeyPrefix + shopID.String()
}

func (s *RedisStore) Load(ctx context.Context, shopID id.ShopID) (models.ConfigurationDocument, error) {
	raw, err := s.client.Get(ctx, configKey(shopID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ConfigurationDocument{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.ConfigurationDocument{}, fmt.Errorf("load config %s: %w", shopID, err)
	}
	var doc models.ConfigurationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.ConfigurationDocument{}, fmt.Errorf("decode config %s: %w", shopID, err)
	}
	return doc, nil
}

func (s *RedisStore) Save(ctx context.Context, shopID id.ShopID, doc models.ConfigurationDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", shopID, err)
	}
	// No TTL: configuration lives until the shop is deleted.
	if err := s.client.Set(ctx, configKey(shopID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save config %s: %w", shopID, err)
	}
	return nil
}

// Delete removes a shop's document. Only used when the owning shop is deleted.
func (s *RedisStore) Delete(ctx context.Context, shopID id.ShopID) error {
	return s.client.Del(ctx, configKey(shopID)).Err()
}
