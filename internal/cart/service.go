package cart

import (
	"context"
	"errors"
	"log/slog"

	cartmetrics "vitrine/internal/cart/metrics"
	"vitrine/internal/cart/tracker"
	"vitrine/internal/catalog"
	"vitrine/internal/telemetry"
	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
	"vitrine/pkg/platform/sentinel"
	"vitrine/pkg/requestcontext"
)

// MutationObserver receives cart state changes. The tracker implements it;
// observation is in-memory and never fails a cart operation.
type MutationObserver interface {
	Touch(sessionID id.SessionID, snap tracker.Snapshot)
	Complete(sessionID id.SessionID)
}

// Service owns all cart mutations for shopper sessions. Nothing outside this
// service writes cart state, which is what lets the abandonment logic trust
// that it saw every mutation.
type Service struct {
	store     Store
	catalog   catalog.Store
	observer  MutationObserver
	telemetry telemetry.Sink
	logger    *slog.Logger
	metrics   *cartmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *cartmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTelemetry(sink telemetry.Sink) Option {
	return func(s *Service) { s.telemetry = sink }
}

func WithObserver(observer MutationObserver) Option {
	return func(s *Service) { s.observer = observer }
}

func New(store Store, catalogStore catalog.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("cart store is required")
	}
	if catalogStore == nil {
		return nil, errors.New("catalog store is required")
	}
	s := &Service{
		store:     store,
		catalog:   catalogStore,
		telemetry: telemetry.NopSink{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns the session's cart, or a fresh empty one.
func (s *Service) Get(ctx context.Context, shopID id.ShopID, sessionID id.SessionID) (Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return NewCart(shopID, sessionID), nil
	}
	if err != nil {
		return Cart{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cart")
	}
	return cart, nil
}

// Add puts quantity units of a product into the cart, snapshotting the
// current unit price.
func (s *Service) Add(ctx context.Context, shopID id.ShopID, sessionID id.SessionID, productID id.ProductID, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, dErrors.New(dErrors.CodeBadRequest, "quantity must be positive")
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Cart{}, dErrors.New(dErrors.CodeNotFound, "unknown product")
	}
	if err != nil {
		return Cart{}, dErrors.Wrap(err, dErrors.CodeInternal, "catalog lookup failed")
	}
	if !product.Available {
		return Cart{}, dErrors.New(dErrors.CodeConflict, "product is not available")
	}

	return s.mutate(ctx, shopID, sessionID, "add", func(cart *Cart) error {
		line := cart.Lines[productID]
		line.ProductID = productID
		line.Name = product.Name
		line.UnitPriceCents = product.PriceCents
		line.Quantity += quantity
		cart.Lines[productID] = line
		return nil
	})
}

// UpdateQuantity sets the quantity for a product already in the cart.
// Quantity zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, shopID id.ShopID, sessionID id.SessionID, productID id.ProductID, quantity int) (Cart, error) {
	if quantity < 0 {
		return Cart{}, dErrors.New(dErrors.CodeBadRequest, "quantity must not be negative")
	}
	return s.mutate(ctx, shopID, sessionID, "update", func(cart *Cart) error {
		line, ok := cart.Lines[productID]
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "product not in cart")
		}
		if quantity == 0 {
			delete(cart.Lines, productID)
			return nil
		}
		line.Quantity = quantity
		cart.Lines[productID] = line
		return nil
	})
}

// Remove deletes a product line from the cart.
func (s *Service) Remove(ctx context.Context, shopID id.ShopID, sessionID id.SessionID, productID id.ProductID) (Cart, error) {
	return s.mutate(ctx, shopID, sessionID, "remove", func(cart *Cart) error {
		if _, ok := cart.Lines[productID]; !ok {
			return dErrors.New(dErrors.CodeNotFound, "product not in cart")
		}
		delete(cart.Lines, productID)
		return nil
	})
}

// Clear empties the cart. The session drops back to Idle.
func (s *Service) Clear(ctx context.Context, shopID id.ShopID, sessionID id.SessionID) (Cart, error) {
	return s.mutate(ctx, shopID, sessionID, "clear", func(cart *Cart) error {
		cart.Lines = make(map[id.ProductID]Line)
		return nil
	})
}

// Checkout completes the purchase: the cart is deleted, the tracker resets,
// and a checkout event is emitted.
func (s *Service) Checkout(ctx context.Context, shopID id.ShopID, sessionID id.SessionID) (Cart, error) {
	cart, err := s.Get(ctx, shopID, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if cart.Empty() {
		return Cart{}, dErrors.New(dErrors.CodeConflict, "cart is empty")
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return Cart{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete checkout")
	}
	if s.observer != nil {
		s.observer.Complete(sessionID)
	}
	if s.metrics != nil {
		s.metrics.Checkouts.Inc()
	}
	s.telemetry.Record(ctx, telemetry.Event{
		Type:      telemetry.EventCheckoutCompleted,
		Timestamp: requestcontext.Now(ctx),
		ShopID:    shopID,
		SessionID: sessionID,
		RequestID: requestcontext.RequestID(ctx),
		Fields: map[string]any{
			"totalCents": cart.TotalCents(),
			"itemCount":  cart.ItemCount(),
		},
	})
	return cart, nil
}

// mutate runs one cart mutation end to end: load or create, apply, stamp,
// persist, then notify the observer. Observation is strictly after the write
// so the tracker never sees a mutation that failed to persist.
func (s *Service) mutate(ctx context.Context, shopID id.ShopID, sessionID id.SessionID, op string, apply func(*Cart) error) (Cart, error) {
	cart, err := s.Get(ctx, shopID, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if err := apply(&cart); err != nil {
		return Cart{}, err
	}
	cart.LastMutatedAt = requestcontext.Now(ctx)
	if err := s.store.Put(ctx, cart); err != nil {
		return Cart{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cart")
	}
	if s.metrics != nil {
		s.metrics.Mutations.WithLabelValues(op).Inc()
	}
	if s.observer != nil {
		s.observer.Touch(sessionID, tracker.Snapshot{
			ShopID:     shopID,
			TotalCents: cart.TotalCents(),
			ItemCount:  cart.ItemCount(),
			MutatedAt:  cart.LastMutatedAt,
		})
	}
	return cart, nil
}
