// Package kafka publishes telemetry events to a Kafka topic. Delivery is
// best-effort: produce errors are logged, never surfaced to the emitter.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"vitrine/internal/platform/config"
	"vitrine/internal/telemetry"
)

// Publisher implements telemetry.Sink on top of a franz-go client.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects to the configured brokers. Returns nil when no brokers are
// configured (Kafka telemetry disabled).
func New(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Publisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Record serializes the event and produces it asynchronously. Events for one
// shop share a partition key so per-shop ordering holds.
func (p *Publisher) Record(ctx context.Context, event telemetry.Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "telemetry event marshal failed", "type", string(event.Type), "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ShopID.String()),
		Value: raw,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("telemetry publish failed", "type", string(event.Type), "error", err)
		}
	})
}

// Close flushes outstanding produces and releases the client.
func (p *Publisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return err
	}
	p.client.Close()
	return nil
}
