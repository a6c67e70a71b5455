package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vitrine/internal/cart"
	"vitrine/internal/catalog"
)

func newCartRouter(t *testing.T) chi.Router {
	t.Helper()
	products := catalog.NewInMemoryStore()
	products.Seed(
		catalog.Product{ID: "sku-mug", Name: "Mug", PriceCents: 1499, Available: true},
		catalog.Product{ID: "sku-gone", Name: "Sold out", PriceCents: 999, Available: false},
	)
	svc, err := cart.New(cart.NewInMemoryStore(), products)
	if err != nil {
		t.Fatalf("failed to build cart service: %v", err)
	}
	r := chi.NewRouter()
	New(svc, slog.Default()).Register(r)
	return r
}

type cartBody struct {
	SessionID  string `json:"sessionId"`
	TotalCents int64  `json:"totalCents"`
	ItemCount  int    `json:"itemCount"`
	Lines      map[string]struct {
		Quantity       int   `json:"quantity"`
		UnitPriceCents int64 `json:"unitPriceCents"`
	} `json:"lines"`
}

func doCart(t *testing.T, router chi.Router, method, path, session, body string) (*httptest.ResponseRecorder, cartBody) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded cartBody
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&decoded); err != nil {
			t.Fatalf("failed to decode cart response: %v", err)
		}
	}
	return rec, decoded
}

func TestCartRequiresSessionHeader(t *testing.T) {
	router := newCartRouter(t)
	shopID := uuid.New().String()

	rec, _ := doCart(t, router, http.MethodGet, "/shops/"+shopID+"/cart", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session header, got %d", rec.Code)
	}
}

func TestCartLifecycleViaHandlers(t *testing.T) {
	router := newCartRouter(t)
	shopID := uuid.New().String()
	session := uuid.New().String()
	base := "/shops/" + shopID + "/cart"

	// Empty cart to start.
	rec, body := doCart(t, router, http.MethodGet, base, session, "")
	if rec.Code != http.StatusOK || body.ItemCount != 0 {
		t.Fatalf("expected an empty cart, got %d items (status %d)", body.ItemCount, rec.Code)
	}

	// Add two mugs.
	rec, body = doCart(t, router, http.MethodPost, base+"/items", session,
		`{"productId": "sku-mug", "quantity": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 adding items, got %d: %s", rec.Code, rec.Body.String())
	}
	if body.ItemCount != 2 || body.TotalCents != 2998 {
		t.Fatalf("expected 2 items totalling 2998, got %d items / %d cents", body.ItemCount, body.TotalCents)
	}

	// Bump the quantity.
	rec, body = doCart(t, router, http.MethodPut, base+"/items/sku-mug", session, `{"quantity": 5}`)
	if rec.Code != http.StatusOK || body.ItemCount != 5 {
		t.Fatalf("expected 5 items after update, got %d (status %d)", body.ItemCount, rec.Code)
	}

	// Checkout converts and empties.
	rec, body = doCart(t, router, http.MethodPost, base+"/checkout", session, "")
	if rec.Code != http.StatusOK || body.TotalCents != 5*1499 {
		t.Fatalf("expected checkout total %d, got %d (status %d)", 5*1499, body.TotalCents, rec.Code)
	}

	rec, body = doCart(t, router, http.MethodGet, base, session, "")
	if rec.Code != http.StatusOK || body.ItemCount != 0 {
		t.Fatalf("expected an empty cart after checkout, got %d items", body.ItemCount)
	}
}

func TestCartErrorStatuses(t *testing.T) {
	router := newCartRouter(t)
	shopID := uuid.New().String()
	session := uuid.New().String()
	base := "/shops/" + shopID + "/cart"

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown product", http.MethodPost, base + "/items", `{"productId": "sku-nope", "quantity": 1}`, http.StatusNotFound},
		{"unavailable product", http.MethodPost, base + "/items", `{"productId": "sku-gone", "quantity": 1}`, http.StatusConflict},
		{"zero quantity", http.MethodPost, base + "/items", `{"productId": "sku-mug", "quantity": 0}`, http.StatusBadRequest},
		{"missing body product", http.MethodPost, base + "/items", `{}`, http.StatusBadRequest},
		{"update missing line", http.MethodPut, base + "/items/sku-mug", `{"quantity": 1}`, http.StatusNotFound},
		{"remove missing line", http.MethodDelete, base + "/items/sku-mug", "", http.StatusNotFound},
		{"checkout empty cart", http.MethodPost, base + "/checkout", "", http.StatusConflict},
		{"bad shop id", http.MethodGet, "/shops/nope/cart", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := doCart(t, router, tc.method, tc.path, session, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCartSessionsAreIsolated(t *testing.T) {
	router := newCartRouter(t)
	shopID := uuid.New().String()
	base := "/shops/" + shopID + "/cart"
	first := uuid.New().String()
	second := uuid.New().String()

	rec, _ := doCart(t, router, http.MethodPost, base+"/items", first,
		`{"productId": "sku-mug", "quantity": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 adding to first session, got %d", rec.Code)
	}

	_, body := doCart(t, router, http.MethodGet, base, second, "")
	if body.ItemCount != 0 {
		t.Fatalf("expected the second session to have an empty cart, got %d items", body.ItemCount)
	}
}
