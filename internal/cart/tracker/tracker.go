// Package tracker derives the cart abandonment signal. It is a per-session
// state machine:
//
//	Idle      - no items, or no mutation since the last reset
//	Active    - a mutation landed within the timeout window
//	Abandoned - the window elapsed with a non-empty cart; signal fired
//
// Any mutation moves the session to Active and resets the window. The timeout
// fires the one-shot signal; it never re-fires for the same unmutated cart.
// Checkout or an emptied cart returns the session to Idle. Telemetry emission
// is best-effort and never blocks the cart operation that triggered it.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cartmetrics "vitrine/internal/cart/metrics"
	"vitrine/internal/telemetry"
	id "vitrine/pkg/domain"
)

// State is the abandonment state of one shopper session.
type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StateAbandoned State = "abandoned"
)

// Snapshot is what the tracker knows about a cart at mutation time. The
// abandonment payload is built from it without another store read.
type Snapshot struct {
	ShopID     id.ShopID
	TotalCents int64
	ItemCount  int
	MutatedAt  time.Time
}

type session struct {
	state    State
	timer    *time.Timer
	snapshot Snapshot
}

// Tracker watches cart mutations and fires the abandonment signal.
type Tracker struct {
	timeout time.Duration
	sink    telemetry.Sink
	logger  *slog.Logger
	metrics *cartmetrics.Metrics

	mu       sync.Mutex
	sessions map[id.SessionID]*session
	stopped  bool
}

type Option func(t *Tracker)

// WithMetrics wires the cart domain counters.
func WithMetrics(m *cartmetrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// New creates a tracker with the given inactivity timeout.
func New(timeout time.Duration, sink telemetry.Sink, logger *slog.Logger, opts ...Option) *Tracker {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	t := &Tracker{
		timeout:  timeout,
		sink:     sink,
		logger:   logger,
		sessions: make(map[id.SessionID]*session),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Touch records a cart mutation. An empty cart resets the session to Idle;
// anything else moves it to Active and restarts the window.
func (t *Tracker) Touch(sessionID id.SessionID, snap Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}

	if snap.ItemCount == 0 {
		t.resetLocked(sessionID)
		return
	}

	s, ok := t.sessions[sessionID]
	if !ok {
		s = &session{}
		t.sessions[sessionID] = s
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = StateActive
	s.snapshot = snap
	s.timer = time.AfterFunc(t.timeout, func() {
		t.expire(sessionID, snap.MutatedAt)
	})
}

// Complete records checkout completion: the session returns to Idle and no
// signal fires for the cart that just converted.
func (t *Tracker) Complete(sessionID id.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked(sessionID)
}

// State reports the current state for a session. Unknown sessions are Idle.
func (t *Tracker) State(sessionID id.SessionID) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[sessionID]; ok {
		return s.state
	}
	return StateIdle
}

// Stop cancels every pending timer. Nothing fires after Stop returns.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for sid, s := range t.sessions {
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(t.sessions, sid)
	}
}

// expire runs on the timer goroutine when a window elapses.
func (t *Tracker) expire(sessionID id.SessionID, mutatedAt time.Time) {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	// A mutation may have restarted the window between the timer firing and
	// this lock: only the timer matching the last recorded mutation counts.
	if !ok || t.stopped || s.state != StateActive || !s.snapshot.MutatedAt.Equal(mutatedAt) {
		t.mu.Unlock()
		return
	}
	s.state = StateAbandoned
	s.timer = nil
	snap := s.snapshot
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.CartsAbandoned.Inc()
	}
	t.sink.Record(context.Background(), telemetry.Event{
		Type:      telemetry.EventCartAbandoned,
		Timestamp: snap.MutatedAt.Add(t.timeout),
		ShopID:    snap.ShopID,
		SessionID: sessionID,
		Fields: map[string]any{
			"totalCents": snap.TotalCents,
			"itemCount":  snap.ItemCount,
		},
	})
	t.logger.Debug("cart abandonment signal fired",
		"session_id", string(sessionID),
		"total_cents", snap.TotalCents,
	)
}

func (t *Tracker) resetLocked(sessionID id.SessionID) {
	if s, ok := t.sessions[sessionID]; ok {
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(t.sessions, sessionID)
	}
}
