// Package telemetry is the best-effort event side channel. Emission never
// blocks or fails the operation that triggered it: sink errors are logged and
// swallowed. Anything needing stronger guarantees does not belong here.
package telemetry

import (
	"context"
	"time"

	id "vitrine/pkg/domain"
)

// EventType classifies telemetry events.
type EventType string

const (
	EventConfigSaved       EventType = "config_saved"
	EventPreviewPublished  EventType = "preview_published"
	EventCartAbandoned     EventType = "cart_abandoned"
	EventCheckoutCompleted EventType = "checkout_completed"
)

// Event is one telemetry record. Keep it transport-agnostic so sinks can fan
// out without caring who emitted it.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ShopID    id.ShopID      `json:"shopId,omitzero"`
	SessionID id.SessionID   `json:"sessionId,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Sink receives events. Record is fire-and-forget from the caller's
// perspective; implementations own their buffering and retries.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// NopSink discards everything. Useful default so callers never nil-check.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}
