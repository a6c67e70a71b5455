package telemetry

import (
	"context"
	"log/slog"
)

// AsyncSink decouples emitters from sink latency: Record enqueues and returns
// immediately, a single worker drains the buffer. When the buffer is full the
// event is dropped and counted - shedding telemetry is always preferable to
// slowing a shopper-facing operation.
type AsyncSink struct {
	inner  Sink
	inbox  chan Event
	logger *slog.Logger
}

// NewAsyncSink wraps inner with a buffered inbox of the given size.
func NewAsyncSink(inner Sink, size int, logger *slog.Logger) *AsyncSink {
	if size <= 0 {
		size = 256
	}
	return &AsyncSink{
		inner:  inner,
		inbox:  make(chan Event, size),
		logger: logger,
	}
}

// Record enqueues the event without blocking.
func (s *AsyncSink) Record(_ context.Context, event Event) {
	select {
	case s.inbox <- event:
	default:
		s.logger.Warn("telemetry buffer full, dropping event", "type", string(event.Type))
	}
}

// Run drains the inbox until ctx is cancelled. Call it from a managed
// goroutine; remaining buffered events are flushed on shutdown.
func (s *AsyncSink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return ctx.Err()
		case event := <-s.inbox:
			s.inner.Record(context.Background(), event)
		}
	}
}

func (s *AsyncSink) flush() {
	for {
		select {
		case event := <-s.inbox:
			s.inner.Record(context.Background(), event)
		default:
			return
		}
	}
}
