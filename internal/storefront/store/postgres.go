package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitrine/internal/storefront/models"
	id "vitrine/pkg/domain"
	"vitrine/pkg/platform/sentinel"
)

// PostgresStore persists configuration documents as jsonb rows.
//
// Schema:
//
//	CREATE TABLE shop_configurations (
//	    shop_id    uuid PRIMARY KEY,
//	    document   jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed configuration store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, shopID id.ShopID) (models.ConfigurationDocument, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM shop_configurations WHERE shop_id = $1`,
		shopID.String(),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (s *PostgresStore) Save(ctx context.Context, shopID id.ShopID, doc models.ConfigurationDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", shopID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO shop_configurations (shop_id, document, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (shop_id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		shopID.String(), raw,
	)
	if err != nil {
		return fmt.Errorf("save config %s: %w", shopID, err)
	}
	return nil
}
