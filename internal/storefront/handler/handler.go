// Package handler exposes the configuration and render endpoints.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vitrine/internal/storefront/models"
	"vitrine/internal/storefront/service"
	"vitrine/internal/theme"
	"vitrine/internal/transport/http/shared"
	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
	"vitrine/pkg/requestcontext"
)

// Service defines the storefront operations the handler needs.
type Service interface {
	LoadDocument(ctx context.Context, shopID id.ShopID) (models.ConfigurationDocument, error)
	SaveDocument(ctx context.Context, shopID id.ShopID, raw []byte) (models.ConfigurationDocument, error)
	ResolvePage(ctx context.Context, shopID id.ShopID) (service.Page, error)
}

// Handler handles configuration and render endpoints.
type Handler struct {
	logger     *slog.Logger
	storefront Service
}

// New creates a storefront Handler.
func New(storefront Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, storefront: storefront}
}

// Register mounts the storefront routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/shops/{shopID}/config", h.handleGetConfig)
	r.Put("/shops/{shopID}/config", h.handlePutConfig)
	r.Get("/shops/{shopID}/page", h.handleGetPage)
	r.Get("/shops/{shopID}/theme.css", h.handleGetThemeCSS)
}

func shopIDFromRequest(r *http.Request) (id.ShopID, error) {
	shopID, err := id.ParseShopID(chi.URLParam(r, "shopID"))
	if err != nil {
		return id.ShopID{}, dErrors.New(dErrors.CodeBadRequest, "invalid shop id")
	}
	return shopID, nil
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID, err := shopIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	doc, err := h.storefront.LoadDocument(ctx, shopID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load configuration",
			"shop_id", shopID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID, err := shopIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable request body"))
		return
	}
	doc, err := h.storefront.SaveDocument(ctx, shopID, raw)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "rejected configuration document",
				"shop_id", shopID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		} else {
			h.logger.ErrorContext(ctx, "failed to save configuration",
				"shop_id", shopID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleGetPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID, err := shopIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	page, err := h.storefront.ResolvePage(ctx, shopID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to resolve page",
			"shop_id", shopID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	// Resolution is deterministic, so the fingerprint is a valid ETag.
	etag := `"` + page.Fingerprint + `"`
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	shared.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGetThemeCSS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID, err := shopIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	page, err := h.storefront.ResolvePage(ctx, shopID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(theme.Project(page.Theme).CSS()))
}
