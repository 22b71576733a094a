package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/internal/listing"
	"github.com/trolleyhq/trolley-backend/pkg/config"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
	"github.com/trolleyhq/trolley-backend/pkg/types"
)

type stubListing struct {
	owner string
}

func (s *stubListing) GetOrderedList(ctx context.Context, owner string, filter listing.Filter) ([]item.Item, error) {
	s.owner = owner
	return []item.Item{}, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func testRouter(t *testing.T, list listing.Service) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:  &config.Config{App: config.AppConfig{Env: "test"}},
		Logger:  logger.New(logger.Options{ServiceName: "router-test"}),
		KV:      okPinger{},
		Listing: list,
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(t, &stubListing{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestOwnerHeaderReachesHandlers(t *testing.T) {
	list := &stubListing{}
	router := testRouter(t, list)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	r.Header.Set("X-Trolley-Owner", "Nicole")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if list.owner != "Nicole" {
		t.Fatalf("owner header not propagated, got %q", list.owner)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := testRouter(t, &stubListing{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
