package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	previewmetrics "vitrine/internal/preview/metrics"
	"vitrine/internal/transport/http/shared"
	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
	"vitrine/pkg/requestcontext"
)

// Handler exposes the preview channel over HTTP: a publish endpoint for the
// authoring context and a websocket endpoint for rendering contexts.
type Handler struct {
	hub             *Hub
	tokens          *TokenIssuer
	authoringOrigin string
	logger          *slog.Logger
	metrics         *previewmetrics.Metrics
	upgrader        websocket.Upgrader
}

// HandlerOption configures optional handler collaborators.
type HandlerOption func(h *Handler)

// WithMetrics wires the preview channel counters.
func WithMetrics(m *previewmetrics.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates the preview Handler. authoringOrigin is the only origin
// whose messages are honored; this check is the sole barrier against a
// malicious page injecting configuration into a sandboxed render target.
func NewHandler(hub *Hub, tokens *TokenIssuer, authoringOrigin string, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub:             hub,
		tokens:          tokens,
		authoringOrigin: authoringOrigin,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return r.Header.Get("Origin") == h.authoringOrigin
		},
	}
	return h
}

// Register mounts the preview routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/shops/{shopID}/preview/token", h.handleMintToken)
	r.Post("/shops/{shopID}/preview", h.handlePublish)
	r.Get("/shops/{shopID}/preview/ws", h.handleRendererSocket)
}

// originAllowed implements the channel's security invariant.
func (h *Handler) originAllowed(r *http.Request) bool {
	return r.Header.Get("Origin") == h.authoringOrigin
}

func (h *Handler) handleMintToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID, err := id.ParseShopID(chi.URLParam(r, "shopID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid shop id"))
		return
	}
	if !h.originAllowed(r) {
		h.rejected()
		h.logger.DebugContext(ctx, "token mint from unexpected origin discarded",
			"shop_id", shopID.String(),
			"origin", r.Header.Get("Origin"),
		)
		// Silent discard: no error body, nothing for a probing page to
		// distinguish from the publish endpoint's responses.
		w.WriteHeader(http.StatusAccepted)
		return
	}
	token, err := h.tokens.Mint(shopID, requestcontext.Now(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint channel token"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handlePublish receives a PREVIEW_UPDATE from the authoring context.
// Messages from any other origin are silently discarded: the response is
// indistinguishable from an accepted publish.
func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID, err := id.ParseShopID(chi.URLParam(r, "shopID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid shop id"))
		return
	}

	if !h.originAllowed(r) {
		h.rejected()
		h.logger.DebugContext(ctx, "preview message from unexpected origin discarded",
			"shop_id", shopID.String(),
			"origin", r.Header.Get("Origin"),
		)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err := h.tokens.Verify(bearerToken(r), shopID); err != nil {
		h.rejected()
		h.logger.DebugContext(ctx, "preview message with invalid channel token discarded",
			"shop_id", shopID.String(),
		)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		// Malformed payloads merge as a no-op; a malformed envelope is
		// equally harmless. Still Accepted: the channel has no failure
		// surface toward the author.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err := h.hub.Publish(ctx, shopID, msg); err != nil {
		shared.WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.PublishesAccepted.Inc()
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleRendererSocket attaches a rendering context. The upgrader enforces the
// origin check; the channel token binds the connection to the shop.
func (h *Handler) handleRendererSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID, err := id.ParseShopID(chi.URLParam(r, "shopID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid shop id"))
		return
	}
	if err := h.tokens.Verify(r.URL.Query().Get("token"), shopID); err != nil {
		shared.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response (403 on origin mismatch).
		h.logger.DebugContext(ctx, "preview socket upgrade rejected",
			"shop_id", shopID.String(),
			"error", err.Error(),
		)
		return
	}

	sub, err := h.hub.Subscribe(ctx, shopID)
	if err != nil {
		_ = conn.Close()
		return
	}
	if h.metrics != nil {
		h.metrics.ActiveSubscribers.Inc()
	}

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// rejected counts one discarded publish or mint attempt.
func (h *Handler) rejected() {
	if h.metrics != nil {
		h.metrics.PublishesRejected.Inc()
	}
}

// writePump forwards page snapshots to the renderer until the subscriber
// closes.
func (h *Handler) writePump(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		if h.metrics != nil {
			h.metrics.ActiveSubscribers.Dec()
		}
		_ = conn.Close()
	}()
	for page := range sub.Updates() {
		if err := conn.WriteJSON(page); err != nil {
			h.hub.Unsubscribe(sub)
			return
		}
	}
}

// readPump exists only to notice the peer going away. The channel is
// one-directional; inbound frames are discarded.
func (h *Handler) readPump(conn *websocket.Conn, sub *Subscriber) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unsubscribe(sub)
			return
		}
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), prefix); ok {
		return after
	}
	return ""
}
