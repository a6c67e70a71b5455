// Package preview implements the one-directional channel between an authoring
// context and its isolated rendering contexts. Authors publish override
// documents; renderers receive freshly resolved page snapshots. Only the most
// recent override matters - this is last-write-wins, never an event log.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vitrine/internal/storefront/service"
	"vitrine/internal/telemetry"
	id "vitrine/pkg/domain"
	"vitrine/pkg/requestcontext"
)

// MessageTypeUpdate is the only message type the channel currently carries.
// Unknown types are ignored so the protocol can grow without breaking old
// renderers.
const MessageTypeUpdate = "PREVIEW_UPDATE"

// Message is the wire envelope published by the authoring context.
type Message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Resolver is the slice of the storefront service the hub needs.
type Resolver interface {
	ResolvePage(ctx context.Context, shopID id.ShopID) (service.Page, error)
	PreviewPage(ctx context.Context, shopID id.ShopID, override map[string]any) (service.Page, error)
}

// Subscriber is one rendering context's listening end. Updates delivers page
// snapshots; a slow subscriber only ever sees the newest snapshot, stale ones
// are dropped, never queued.
type Subscriber struct {
	shopID  id.ShopID
	updates chan service.Page

	mu     sync.Mutex
	closed bool
}

// Updates is the snapshot stream for this subscriber.
func (s *Subscriber) Updates() <-chan service.Page {
	return s.updates
}

// push delivers the newest snapshot, displacing an unconsumed older one.
func (s *Subscriber) push(page service.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.updates <- page:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}

// channel is the per-shop state: the latest override and the attached
// renderers.
type channel struct {
	latestOverride map[string]any
	subscribers    map[*Subscriber]struct{}
}

// Hub routes overrides from authors to renderer subscribers, shop by shop.
type Hub struct {
	resolver  Resolver
	logger    *slog.Logger
	telemetry telemetry.Sink
	tracer    trace.Tracer

	mu       sync.Mutex
	channels map[id.ShopID]*channel
	shutdown bool
}

type HubOption func(h *Hub)

// WithTelemetry wires the event sink for publish telemetry.
func WithTelemetry(sink telemetry.Sink) HubOption {
	return func(h *Hub) { h.telemetry = sink }
}

func NewHub(resolver Resolver, logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		resolver:  resolver,
		logger:    logger,
		telemetry: telemetry.NopSink{},
		tracer:    otel.Tracer("vitrine/preview"),
		channels:  make(map[id.ShopID]*channel),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe attaches a rendering context to a shop's channel. The subscriber
// immediately receives the current snapshot (with any active override
// applied) so it never renders blank while waiting for the first publish.
func (h *Hub) Subscribe(ctx context.Context, shopID id.ShopID) (*Subscriber, error) {
	h.mu.Lock()
	if h.shutdown {
		h.mu.Unlock()
		return nil, errors.New("preview hub is shut down")
	}
	ch, ok := h.channels[shopID]
	if !ok {
		ch = &channel{subscribers: make(map[*Subscriber]struct{})}
		h.channels[shopID] = ch
	}
	sub := &Subscriber{shopID: shopID, updates: make(chan service.Page, 1)}
	ch.subscribers[sub] = struct{}{}
	override := ch.latestOverride
	h.mu.Unlock()

	page, err := h.resolver.PreviewPage(ctx, shopID, override)
	if err != nil {
		h.Unsubscribe(sub)
		return nil, err
	}
	sub.push(page)
	return sub, nil
}

// Unsubscribe detaches a rendering context and closes its update stream.
// The shop channel (and its ephemeral override) is dropped with the last
// subscriber; no state outlives the contexts that used it.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if ch, ok := h.channels[sub.shopID]; ok {
		delete(ch.subscribers, sub)
		if len(ch.subscribers) == 0 {
			delete(h.channels, sub.shopID)
		}
	}
	h.mu.Unlock()
	sub.close()
}

// Publish applies an override message to a shop's channel. Unknown message
// types and messages for shops without renderers are ignored. The override
// replaces any earlier one outright.
func (h *Hub) Publish(ctx context.Context, shopID id.ShopID, msg Message) error {
	if msg.Type != MessageTypeUpdate {
		h.logger.DebugContext(ctx, "ignoring unknown preview message type",
			"shop_id", shopID.String(),
			"type", msg.Type,
		)
		return nil
	}

	ctx, span := h.tracer.Start(ctx, "preview.publish",
		trace.WithAttributes(attribute.String("shop.id", shopID.String())))
	defer span.End()

	h.mu.Lock()
	ch, ok := h.channels[shopID]
	if ok {
		ch.latestOverride = msg.Payload
	}
	h.mu.Unlock()
	if !ok {
		// No renderer attached; nothing to update.
		return nil
	}

	page, err := h.resolver.PreviewPage(ctx, shopID, msg.Payload)
	if err != nil {
		// The render path degrades instead of failing; an error here means
		// the base document could not even be loaded.
		h.logger.ErrorContext(ctx, "preview resolution failed",
			"shop_id", shopID.String(),
			"error", err.Error(),
		)
		return err
	}

	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(ch.subscribers))
	for sub := range ch.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()
	for _, sub := range subs {
		sub.push(page)
	}
	h.telemetry.Record(ctx, telemetry.Event{
		Type:      telemetry.EventPreviewPublished,
		Timestamp: requestcontext.Now(ctx),
		ShopID:    shopID,
		Fields:    map[string]any{"subscribers": len(subs)},
	})
	return nil
}

// Shutdown closes every channel and detaches every subscriber.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.shutdown = true
	channels := h.channels
	h.channels = make(map[id.ShopID]*channel)
	h.mu.Unlock()
	for _, ch := range channels {
		for sub := range ch.subscribers {
			sub.close()
		}
	}
}
