package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "vitrine/pkg/domain"
	"vitrine/pkg/platform/sentinel"
)

// PostgresStore reads products from the catalog table.
//
// Schema:
//
//	CREATE TABLE products (
//	    id          text PRIMARY KEY,
//	    name        text NOT NULL,
//	    price_cents bigint NOT NULL,
//	    image_url   text NOT NULL DEFAULT '',
//	    available   boolean NOT NULL DEFAULT true
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetProduct(ctx context.Context, productID id.ProductID) (Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, price_cents, image_url, available FROM products WHERE id = $1`,
		string(productID),
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.ImageURL, &p.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", productID, err)
	}
	return p, nil
}
