package telemetry

import (
	"context"
	"log/slog"
)

// LogSink writes events to the structured log. The development default, and a
// reasonable fallback when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, event Event) {
	s.logger.InfoContext(ctx, "telemetry event",
		"type", string(event.Type),
		"shop_id", event.ShopID.String(),
		"session_id", string(event.SessionID),
		"request_id", event.RequestID,
		"fields", event.Fields,
	)
}
