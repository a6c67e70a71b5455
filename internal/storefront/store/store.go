// Package store persists configuration documents. The contract is an opaque
// key-value one: Load returns the last saved document for a shop and Save
// overwrites it, last write wins. No backend promises more than that.
package store

import (
	"context"

	"vitrine/internal/storefront/models"
	id "vitrine/pkg/domain"
)

// ConfigStore is the persistence boundary for configuration documents.
// Implementations return sentinel.ErrNotFound (possibly wrapped) when a shop
// has never saved a document.
type ConfigStore interface {
	Load(ctx context.Context, shopID id.ShopID) (models.ConfigurationDocument, error)
	Save(ctx context.Context, shopID id.ShopID, doc models.ConfigurationDocument) error
}
