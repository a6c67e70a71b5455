package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vitrine/internal/storefront/service"
	"vitrine/internal/storefront/store"
	id "vitrine/pkg/domain"
)

const testAuthoringOrigin = "http://authoring.test:3000"

func newPreviewRouter(t *testing.T) (chi.Router, *Hub, *TokenIssuer) {
	t.Helper()
	svc, err := service.New(store.NewInMemoryStore())
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	hub := NewHub(svc, slog.Default())
	issuer := NewTokenIssuer("handler-test-key")
	r := chi.NewRouter()
	NewHandler(hub, issuer, testAuthoringOrigin, slog.Default()).Register(r)
	return r, hub, issuer
}

func mintToken(t *testing.T, router chi.Router, shopID string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/shops/"+shopID+"/preview/token", nil)
	req.Header.Set("Origin", testAuthoringOrigin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 minting token, got %d", rec.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token in the response")
	}
	return resp.Token
}

func TestMintTokenRequiresAuthoringOrigin(t *testing.T) {
	router, _, _ := newPreviewRouter(t)
	shopID := uuid.New().String()

	req := httptest.NewRequest(http.MethodPost, "/shops/"+shopID+"/preview/token", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected the discard status, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected an empty body on discard, got %q", rec.Body.String())
	}
}

func TestPublishFromForeignOriginIsIndistinguishable(t *testing.T) {
	router, hub, issuer := newPreviewRouter(t)
	shopID := uuid.New().String()
	parsed, err := id.ParseShopID(shopID)
	if err != nil {
		t.Fatalf("failed to parse shop id: %v", err)
	}

	sub, err := hub.Subscribe(context.Background(), parsed)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	defer hub.Unsubscribe(sub)
	<-sub.Updates() // initial snapshot

	token, err := issuer.Mint(parsed, time.Now())
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	body := `{"type": "PREVIEW_UPDATE", "payload": {"hero": {"headline": "Injected"}}}`

	// Foreign origin with a perfectly valid token: still discarded.
	req := httptest.NewRequest(http.MethodPost, "/shops/"+shopID+"/preview", strings.NewReader(body))
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected the discard response to mirror success, got %d", rec.Code)
	}

	select {
	case page := <-sub.Updates():
		t.Fatalf("discarded publish reached a subscriber: %+v", page.Theme)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishWithInvalidTokenDiscarded(t *testing.T) {
	router, hub, _ := newPreviewRouter(t)
	shopID := uuid.New().String()
	parsed, err := id.ParseShopID(shopID)
	if err != nil {
		t.Fatalf("failed to parse shop id: %v", err)
	}

	sub, err := hub.Subscribe(context.Background(), parsed)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	defer hub.Unsubscribe(sub)
	<-sub.Updates()

	body := `{"type": "PREVIEW_UPDATE", "payload": {"hero": {"headline": "Injected"}}}`
	req := httptest.NewRequest(http.MethodPost, "/shops/"+shopID+"/preview", strings.NewReader(body))
	req.Header.Set("Origin", testAuthoringOrigin)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected the discard response to mirror success, got %d", rec.Code)
	}

	select {
	case <-sub.Updates():
		t.Fatalf("publish with a forged token reached a subscriber")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishFromAuthoringOriginDelivers(t *testing.T) {
	router, hub, _ := newPreviewRouter(t)
	shopID := uuid.New().String()
	parsed, err := id.ParseShopID(shopID)
	if err != nil {
		t.Fatalf("failed to parse shop id: %v", err)
	}

	sub, err := hub.Subscribe(context.Background(), parsed)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	defer hub.Unsubscribe(sub)
	<-sub.Updates()

	token := mintToken(t, router, shopID)

	body := `{"type": "PREVIEW_UPDATE", "payload": {"hero": {"headline": "From editor"}}}`
	req := httptest.NewRequest(http.MethodPost, "/shops/"+shopID+"/preview", strings.NewReader(body))
	req.Header.Set("Origin", testAuthoringOrigin)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 on publish, got %d", rec.Code)
	}

	select {
	case page := <-sub.Updates():
		var headline any
		for _, sec := range page.Sections {
			if sec.ID == "hero" {
				headline = sec.Props["headline"]
			}
		}
		if headline != "From editor" {
			t.Fatalf("expected the override headline, got %v", headline)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the preview delivery")
	}
}

func TestPublishMalformedBodyAccepted(t *testing.T) {
	router, _, _ := newPreviewRouter(t)
	shopID := uuid.New().String()
	token := mintToken(t, router, shopID)

	req := httptest.NewRequest(http.MethodPost, "/shops/"+shopID+"/preview", strings.NewReader(`{"type":`))
	req.Header.Set("Origin", testAuthoringOrigin)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected malformed body to be quietly accepted, got %d", rec.Code)
	}
}

func TestRendererSocketRequiresToken(t *testing.T) {
	router, _, _ := newPreviewRouter(t)
	shopID := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/shops/"+shopID+"/preview/ws", nil)
	req.Header.Set("Origin", testAuthoringOrigin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without a channel token, got %d", rec.Code)
	}
}
