package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vitrine/internal/cart/tracker"
	"vitrine/internal/catalog"
	"vitrine/internal/telemetry"
	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
)

// =============================================================================
// Cart Service Suite
// =============================================================================
// Justification for unit tests: the service enforces price snapshotting,
// availability gating, and the persist-before-observe ordering the abandonment
// tracker depends on. None of that is visible from the HTTP surface alone.

type CartServiceSuite struct {
	suite.Suite
	store     *InMemoryStore
	catalog   *catalog.InMemoryStore
	observer  *recordingObserver
	sink      *captureSink
	service   *Service
	shopID    id.ShopID
	sessionID id.SessionID
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceSuite))
}

func (s *CartServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.catalog = catalog.NewInMemoryStore()
	s.catalog.Seed(
		catalog.Product{ID: "sku-mug", Name: "Mug", PriceCents: 1499, Available: true},
		catalog.Product{ID: "sku-tee", Name: "Tee", PriceCents: 2999, Available: true},
		catalog.Product{ID: "sku-gone", Name: "Sold out", PriceCents: 999, Available: false},
	)
	s.observer = &recordingObserver{}
	s.sink = &captureSink{}
	s.shopID = id.ShopID(uuid.New())
	s.sessionID = id.NewSessionID()

	var err error
	s.service, err = New(s.store, s.catalog,
		WithObserver(s.observer),
		WithTelemetry(s.sink),
	)
	s.Require().NoError(err)
}

// SetupSubTest gives every s.Run a fresh fixture; subtests assume an empty
// cart and clean observer/sink state.
func (s *CartServiceSuite) SetupSubTest() {
	s.SetupTest()
}

// recordingObserver captures tracker notifications in order.
type recordingObserver struct {
	touches   []tracker.Snapshot
	completes []id.SessionID
}

func (r *recordingObserver) Touch(_ id.SessionID, snap tracker.Snapshot) {
	r.touches = append(r.touches, snap)
}

func (r *recordingObserver) Complete(sessionID id.SessionID) {
	r.completes = append(r.completes, sessionID)
}

type captureSink struct {
	events []telemetry.Event
}

func (c *captureSink) Record(_ context.Context, ev telemetry.Event) {
	c.events = append(c.events, ev)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *CartServiceSuite) TestNew() {
	s.Run("nil cart store returns error", func() {
		_, err := New(nil, s.catalog)
		s.Error(err)
	})

	s.Run("nil catalog store returns error", func() {
		_, err := New(s.store, nil)
		s.Error(err)
	})
}

// =============================================================================
// Get Tests
// =============================================================================

func (s *CartServiceSuite) TestGet() {
	ctx := context.Background()

	s.Run("unknown session gets a fresh empty cart", func() {
		cart, err := s.service.Get(ctx, s.shopID, s.sessionID)
		s.NoError(err)
		s.True(cart.Empty())
		s.Equal(s.sessionID, cart.SessionID)
		s.Equal(s.shopID, cart.ShopID)
	})
}

// =============================================================================
// Add Tests
// =============================================================================

func (s *CartServiceSuite) TestAdd() {
	ctx := context.Background()

	s.Run("adds a line with the snapshotted price", func() {
		cart, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 2)
		s.NoError(err)
		s.Equal(2, cart.ItemCount())
		s.Equal(int64(2998), cart.TotalCents())
		s.Equal("Mug", cart.Lines["sku-mug"].Name)
	})

	s.Run("adding the same product accumulates quantity", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 1)
		s.Require().NoError(err)
		cart, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 2)
		s.NoError(err)
		s.Equal(3, cart.Lines["sku-mug"].Quantity)
	})

	s.Run("price stays snapshotted across catalog changes", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-tee", 1)
		s.Require().NoError(err)

		s.catalog.Seed(catalog.Product{ID: "sku-tee", Name: "Tee", PriceCents: 3999, Available: true})

		cart, err := s.service.Get(ctx, s.shopID, s.sessionID)
		s.NoError(err)
		s.Equal(int64(2999), cart.Lines["sku-tee"].UnitPriceCents)
	})

	s.Run("zero or negative quantity is rejected", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		_, err = s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", -1)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown product is rejected", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-nope", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unavailable product is rejected", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-gone", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

// =============================================================================
// UpdateQuantity and Remove Tests
// =============================================================================

func (s *CartServiceSuite) TestUpdateQuantity() {
	ctx := context.Background()

	s.Run("sets the quantity for an existing line", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 1)
		s.Require().NoError(err)

		cart, err := s.service.UpdateQuantity(ctx, s.shopID, s.sessionID, "sku-mug", 5)
		s.NoError(err)
		s.Equal(5, cart.Lines["sku-mug"].Quantity)
	})

	s.Run("quantity zero removes the line", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 1)
		s.Require().NoError(err)

		cart, err := s.service.UpdateQuantity(ctx, s.shopID, s.sessionID, "sku-mug", 0)
		s.NoError(err)
		s.True(cart.Empty())
	})

	s.Run("missing line is not found", func() {
		_, err := s.service.UpdateQuantity(ctx, s.shopID, s.sessionID, "sku-tee", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("negative quantity is rejected", func() {
		_, err := s.service.UpdateQuantity(ctx, s.shopID, s.sessionID, "sku-mug", -2)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *CartServiceSuite) TestRemove() {
	ctx := context.Background()

	s.Run("removes an existing line", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 1)
		s.Require().NoError(err)

		cart, err := s.service.Remove(ctx, s.shopID, s.sessionID, "sku-mug")
		s.NoError(err)
		s.True(cart.Empty())
	})

	s.Run("missing line is not found", func() {
		_, err := s.service.Remove(ctx, s.shopID, s.sessionID, "sku-mug")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Observer Ordering Tests
// =============================================================================

func (s *CartServiceSuite) TestObserverNotifications() {
	ctx := context.Background()

	s.Run("every successful mutation touches the observer", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 2)
		s.Require().NoError(err)
		s.Require().Len(s.observer.touches, 1)
		s.Equal(2, s.observer.touches[0].ItemCount)
		s.Equal(int64(2998), s.observer.touches[0].TotalCents)
		s.Equal(s.shopID, s.observer.touches[0].ShopID)
		s.False(s.observer.touches[0].MutatedAt.IsZero())
	})

	s.Run("failed mutations never touch the observer", func() {
		before := len(s.observer.touches)
		_, _ = s.service.Add(ctx, s.shopID, s.sessionID, "sku-nope", 1)
		_, _ = s.service.UpdateQuantity(ctx, s.shopID, s.sessionID, "sku-tee", 1)
		s.Len(s.observer.touches, before)
	})

	s.Run("clearing reports an empty snapshot", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 1)
		s.Require().NoError(err)
		_, err = s.service.Clear(ctx, s.shopID, s.sessionID)
		s.Require().NoError(err)

		last := s.observer.touches[len(s.observer.touches)-1]
		s.Equal(0, last.ItemCount)
	})
}

// =============================================================================
// Checkout Tests
// =============================================================================

func (s *CartServiceSuite) TestCheckout() {
	ctx := context.Background()

	s.Run("empty cart cannot check out", func() {
		_, err := s.service.Checkout(ctx, s.shopID, s.sessionID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Empty(s.observer.completes)
	})

	s.Run("checkout deletes the cart and completes the session", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-mug", 2)
		s.Require().NoError(err)

		cart, err := s.service.Checkout(ctx, s.shopID, s.sessionID)
		s.NoError(err)
		s.Equal(int64(2998), cart.TotalCents())
		s.Equal([]id.SessionID{s.sessionID}, s.observer.completes)

		after, err := s.service.Get(ctx, s.shopID, s.sessionID)
		s.NoError(err)
		s.True(after.Empty())
	})

	s.Run("checkout emits a telemetry event", func() {
		_, err := s.service.Add(ctx, s.shopID, s.sessionID, "sku-tee", 1)
		s.Require().NoError(err)
		_, err = s.service.Checkout(ctx, s.shopID, s.sessionID)
		s.Require().NoError(err)

		s.Require().NotEmpty(s.sink.events)
		ev := s.sink.events[len(s.sink.events)-1]
		s.Equal(telemetry.EventCheckoutCompleted, ev.Type)
		s.Equal(int64(2999), ev.Fields["totalCents"])
		s.Equal(s.sessionID, ev.SessionID)
	})
}
