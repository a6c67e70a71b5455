// Package service orchestrates the configuration document lifecycle: loading
// with first-configure defaults, validated saves, and page resolution for both
// the live path and preview overrides.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vitrine/internal/storefront/merge"
	storefrontmetrics "vitrine/internal/storefront/metrics"
	"vitrine/internal/storefront/models"
	"vitrine/internal/storefront/resolver"
	"vitrine/internal/storefront/schema"
	"vitrine/internal/telemetry"
	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
	"vitrine/pkg/platform/sentinel"
	"vitrine/pkg/requestcontext"
)

// ConfigStore is the persistence contract the service needs.
type ConfigStore interface {
	Load(ctx context.Context, shopID id.ShopID) (models.ConfigurationDocument, error)
	Save(ctx context.Context, shopID id.ShopID, doc models.ConfigurationDocument) error
}

// Page is one fully resolved storefront page.
type Page struct {
	Sections    []models.ResolvedSection `json:"sections"`
	Theme       models.ResolvedTheme     `json:"theme"`
	Fingerprint string                   `json:"fingerprint"`
}

// Service owns configuration document operations for all shops.
type Service struct {
	store     ConfigStore
	logger    *slog.Logger
	metrics   *storefrontmetrics.Metrics
	telemetry telemetry.Sink
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *storefrontmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTelemetry(sink telemetry.Sink) Option {
	return func(s *Service) { s.telemetry = sink }
}

func New(store ConfigStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("config store is required")
	}
	s := &Service{
		store:     store,
		logger:    slog.Default(),
		telemetry: telemetry.NopSink{},
		tracer:    otel.Tracer("vitrine/storefront"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoadDocument returns the shop's configuration, falling back to the default
// document when the shop has never saved one. The render path must always
// have something to work with, so a missing document is not an error here.
func (s *Service) LoadDocument(ctx context.Context, shopID id.ShopID) (models.ConfigurationDocument, error) {
	doc, err := s.store.Load(ctx, shopID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.DefaultDocument(), nil
	}
	if err != nil {
		return models.ConfigurationDocument{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load configuration")
	}
	return doc, nil
}

// SaveDocument validates and persists raw authored JSON. Persistence failure
// is surfaced to the author - this is the one user-visible failure mode the
// engine has.
func (s *Service) SaveDocument(ctx context.Context, shopID id.ShopID, raw []byte) (models.ConfigurationDocument, error) {
	if err := schema.ValidateBytes(raw); err != nil {
		return models.ConfigurationDocument{}, err
	}
	var doc models.ConfigurationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.ConfigurationDocument{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid configuration document")
	}
	if err := doc.Validate(); err != nil {
		return models.ConfigurationDocument{}, err
	}
	if err := s.store.Save(ctx, shopID, doc); err != nil {
		if s.metrics != nil {
			s.metrics.SaveFailures.Inc()
		}
		return models.ConfigurationDocument{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save configuration")
	}
	if s.metrics != nil {
		s.metrics.ConfigsSaved.Inc()
	}
	s.telemetry.Record(ctx, telemetry.Event{
		Type:      telemetry.EventConfigSaved,
		Timestamp: requestcontext.Now(ctx),
		ShopID:    shopID,
		RequestID: requestcontext.RequestID(ctx),
		Fields: map[string]any{
			"sections":     len(doc.SectionOrder),
			"customBlocks": len(doc.CustomBlocks),
		},
	})
	return doc, nil
}

// ResolvePage loads and resolves the live page for a shop.
func (s *Service) ResolvePage(ctx context.Context, shopID id.ShopID) (Page, error) {
	doc, err := s.LoadDocument(ctx, shopID)
	if err != nil {
		return Page{}, err
	}
	return s.resolve(ctx, shopID, doc), nil
}

// PreviewPage resolves the page a shop would show with the override applied.
// The override is ephemeral: nothing here writes back to the store.
func (s *Service) PreviewPage(ctx context.Context, shopID id.ShopID, override map[string]any) (Page, error) {
	doc, err := s.LoadDocument(ctx, shopID)
	if err != nil {
		return Page{}, err
	}
	return s.resolve(ctx, shopID, merge.Apply(doc, override)), nil
}

func (s *Service) resolve(ctx context.Context, shopID id.ShopID, doc models.ConfigurationDocument) Page {
	ctx, span := s.tracer.Start(ctx, "storefront.resolve",
		trace.WithAttributes(attribute.String("shop.id", shopID.String())))
	defer span.End()

	s.logDanglingRefs(ctx, shopID, doc)

	sections := resolver.Resolve(doc)
	theme := resolver.ResolveTheme(doc)
	if s.metrics != nil {
		s.metrics.PagesResolved.Inc()
	}
	return Page{
		Sections:    sections,
		Theme:       theme,
		Fingerprint: resolver.Fingerprint(sections, theme),
	}
}

// logDanglingRefs reports section order entries that reference no existing
// custom block. This is an expected transient state during authoring, so it
// stays at debug level and never becomes an error.
func (s *Service) logDanglingRefs(ctx context.Context, shopID id.ShopID, doc models.ConfigurationDocument) {
	if !s.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	for _, secID := range doc.SectionOrder {
		if !secID.IsCustomRef() {
			continue
		}
		if _, ok := doc.BlockByID(string(secID)); !ok {
			s.logger.DebugContext(ctx, "dangling custom block reference skipped",
				"shop_id", shopID.String(),
				"section_id", string(secID),
			)
		}
	}
}
