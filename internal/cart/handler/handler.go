// Package handler exposes the shopper-facing cart endpoints. Session
// handling is external: callers present an opaque session ID header.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vitrine/internal/cart"
	"vitrine/internal/transport/http/shared"
	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
	"vitrine/pkg/requestcontext"
)

// SessionHeader carries the shopper session ID on every cart request.
const SessionHeader = "X-Session-ID"

// Service defines the cart operations the handler needs.
type Service interface {
	Get(ctx context.Context, shopID id.ShopID, sessionID id.SessionID) (cart.Cart, error)
	Add(ctx context.Context, shopID id.ShopID, sessionID id.SessionID, productID id.ProductID, quantity int) (cart.Cart, error)
	UpdateQuantity(ctx context.Context, shopID id.ShopID, sessionID id.SessionID, productID id.ProductID, quantity int) (cart.Cart, error)
	Remove(ctx context.Context, shopID id.ShopID, sessionID id.SessionID, productID id.ProductID) (cart.Cart, error)
	Clear(ctx context.Context, shopID id.ShopID, sessionID id.SessionID) (cart.Cart, error)
	Checkout(ctx context.Context, shopID id.ShopID, sessionID id.SessionID) (cart.Cart, error)
}

// Handler handles cart endpoints.
type Handler struct {
	logger *slog.Logger
	carts  Service
}

// New creates a cart Handler.
func New(carts Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, carts: carts}
}

// Register mounts the cart routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/shops/{shopID}/cart", h.withScope(h.handleGet))
	r.Post("/shops/{shopID}/cart/items", h.withScope(h.handleAdd))
	r.Put("/shops/{shopID}/cart/items/{productID}", h.withScope(h.handleUpdate))
	r.Delete("/shops/{shopID}/cart/items/{productID}", h.withScope(h.handleRemove))
	r.Delete("/shops/{shopID}/cart", h.withScope(h.handleClear))
	r.Post("/shops/{shopID}/cart/checkout", h.withScope(h.handleCheckout))
}

type scopedHandler func(w http.ResponseWriter, r *http.Request, shopID id.ShopID, sessionID id.SessionID)

// withScope extracts and validates the shop and session scope every cart
// route shares.
func (h *Handler) withScope(next scopedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := id.ParseShopID(chi.URLParam(r, "shopID"))
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid shop id"))
			return
		}
		sessionID := id.SessionID(r.Header.Get(SessionHeader))
		if sessionID == "" {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing session id"))
			return
		}
		ctx := requestcontext.WithSessionID(r.Context(), sessionID)
		next(w, r.WithContext(ctx), shopID, sessionID)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, shopID id.ShopID, sessionID id.SessionID) {
	c, err := h.carts.Get(r.Context(), shopID, sessionID)
	if err != nil {
		h.writeFailure(w, r, "load cart", err)
		return
	}
	h.writeCart(w, c)
}

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request, shopID id.ShopID, sessionID id.SessionID) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	c, err := h.carts.Add(r.Context(), shopID, sessionID, id.ProductID(req.ProductID), req.Quantity)
	if err != nil {
		h.writeFailure(w, r, "add to cart", err)
		return
	}
	h.writeCart(w, c)
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, shopID id.ShopID, sessionID id.SessionID) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	productID := id.ProductID(chi.URLParam(r, "productID"))
	c, err := h.carts.UpdateQuantity(r.Context(), shopID, sessionID, productID, req.Quantity)
	if err != nil {
		h.writeFailure(w, r, "update cart", err)
		return
	}
	h.writeCart(w, c)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request, shopID id.ShopID, sessionID id.SessionID) {
	productID := id.ProductID(chi.URLParam(r, "productID"))
	c, err := h.carts.Remove(r.Context(), shopID, sessionID, productID)
	if err != nil {
		h.writeFailure(w, r, "remove from cart", err)
		return
	}
	h.writeCart(w, c)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request, shopID id.ShopID, sessionID id.SessionID) {
	c, err := h.carts.Clear(r.Context(), shopID, sessionID)
	if err != nil {
		h.writeFailure(w, r, "clear cart", err)
		return
	}
	h.writeCart(w, c)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request, shopID id.ShopID, sessionID id.SessionID) {
	c, err := h.carts.Checkout(r.Context(), shopID, sessionID)
	if err != nil {
		h.writeFailure(w, r, "checkout", err)
		return
	}
	h.writeCart(w, c)
}

// cartResponse adds the derived totals shoppers actually look at.
type cartResponse struct {
	cart.Cart
	TotalCents int64 `json:"totalCents"`
	ItemCount  int   `json:"itemCount"`
}

func (h *Handler) writeCart(w http.ResponseWriter, c cart.Cart) {
	shared.WriteJSON(w, http.StatusOK, cartResponse{
		Cart:       c,
		TotalCents: c.TotalCents(),
		ItemCount:  c.ItemCount(),
	})
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), "cart operation failed",
			"op", op,
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
