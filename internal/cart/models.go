// Package cart owns shopper cart state. All mutation goes through the
// service so the abandonment tracker can never be bypassed.
package cart

import (
	"time"

	id "vitrine/pkg/domain"
)

// Line is one product entry in a cart. The unit price is snapshotted at add
// time so totals stay stable while a shopper deliberates.
type Line struct {
	ProductID      id.ProductID `json:"productId"`
	Name           string       `json:"name"`
	Quantity       int          `json:"quantity"`
	UnitPriceCents int64        `json:"unitPriceCents"`
}

// Cart is one shopper session's cart. LastMutatedAt only moves forward;
// every mutation stamps it.
type Cart struct {
	SessionID     id.SessionID          `json:"sessionId"`
	ShopID        id.ShopID             `json:"shopId"`
	Lines         map[id.ProductID]Line `json:"lines"`
	LastMutatedAt time.Time             `json:"lastMutatedAt"`
}

// NewCart returns an empty cart for the session.
func NewCart(shopID id.ShopID, sessionID id.SessionID) Cart {
	return Cart{
		SessionID: sessionID,
		ShopID:    shopID,
		Lines:     make(map[id.ProductID]Line),
	}
}

// Empty reports whether the cart holds no items.
func (c Cart) Empty() bool { return len(c.Lines) == 0 }

// ItemCount is the total quantity across all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// TotalCents is the cart total at snapshotted unit prices.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.UnitPriceCents * int64(l.Quantity)
	}
	return total
}

// clone returns a deep copy so stores and callers never share line maps.
func (c Cart) clone() Cart {
	out := c
	out.Lines = make(map[id.ProductID]Line, len(c.Lines))
	for k, v := range c.Lines {
		out.Lines[k] = v
	}
	return out
}
