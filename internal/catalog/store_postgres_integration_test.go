//go:build integration

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vitrine/internal/catalog"
	"vitrine/pkg/platform/sentinel"
	"vitrine/pkg/testutil/containers"
)

type CatalogPostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *catalog.PostgresStore
}

func TestCatalogPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CatalogPostgresSuite))
}

func (s *CatalogPostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), `
		CREATE TABLE products (
		    id          text PRIMARY KEY,
		    name        text NOT NULL,
		    price_cents bigint NOT NULL,
		    image_url   text NOT NULL DEFAULT '',
		    available   boolean NOT NULL DEFAULT true
		)`)
	s.pg.Exec(s.T(), `
		INSERT INTO products (id, name, price_cents, image_url, available) VALUES
		('sku-mug', 'Mug', 1499, 'https://img.example/mug.png', true),
		('sku-gone', 'Sold out', 999, '', false)`)
	s.store = catalog.NewPostgres(s.pg.Pool)
}

func (s *CatalogPostgresSuite) TestGetProduct() {
	ctx := context.Background()

	s.Run("existing product is returned", func() {
		p, err := s.store.GetProduct(ctx, "sku-mug")
		s.Require().NoError(err)
		s.Equal("Mug", p.Name)
		s.Equal(int64(1499), p.PriceCents)
		s.True(p.Available)
	})

	s.Run("unavailable product still reads", func() {
		p, err := s.store.GetProduct(ctx, "sku-gone")
		s.Require().NoError(err)
		s.False(p.Available)
	})

	s.Run("unknown product is not found", func() {
		_, err := s.store.GetProduct(ctx, "sku-nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
