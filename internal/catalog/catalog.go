// Package catalog is the product lookup boundary. The storefront resolver and
// the cart both read from it; neither writes.
package catalog

import (
	"context"

	id "vitrine/pkg/domain"
)

// Product is one sellable item. Prices are integer cents.
type Product struct {
	ID         id.ProductID `json:"id"`
	Name       string       `json:"name"`
	PriceCents int64        `json:"priceCents"`
	ImageURL   string       `json:"imageUrl,omitempty"`
	Available  bool         `json:"available"`
}

// Store answers product lookups. Implementations return sentinel.ErrNotFound
// (possibly wrapped) for unknown products.
type Store interface {
	GetProduct(ctx context.Context, productID id.ProductID) (Product, error)
}
