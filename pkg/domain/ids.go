// Package domain holds the typed identifiers shared across the storefront
// engine. Wrapping uuid.UUID (or reserved string forms) in distinct types keeps
// a shop ID from ever being passed where a product ID is expected.
package domain

import "github.com/google/uuid"

// ShopID identifies one merchant storefront and keys its configuration document.
type ShopID uuid.UUID

func (id ShopID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id ShopID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText serializes the ID in its canonical UUID string form. Without
// this a ShopID would encode as a raw byte array in JSON.
func (id ShopID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses the canonical UUID string form.
func (id *ShopID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return err
	}
	*id = ShopID(u)
	return nil
}

// ParseShopID parses the canonical UUID string form.
func ParseShopID(s string) (ShopID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ShopID{}, err
	}
	return ShopID(u), nil
}

// ProductID identifies a catalog product.
type ProductID string

// SessionID identifies one shopper session; carts and abandonment state are
// scoped to it.
type SessionID string

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.NewString()) }
