package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smakfood/smakbot/core/config"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(config.CatalogConfig{
		BaseURL:        srv.URL,
		Token:          "secret-token",
		TimeoutSeconds: 5,
	})
	return client, srv
}

func TestServiceList(t *testing.T) {
	var gotAuth, gotReqID string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		if r.URL.Path != "/countries" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(Page[Country]{
			Items:      []Country{{ID: "1", TitleUA: "Україна", TitleEN: "Ukraine"}},
			TotalPages: 4,
		})
	}))

	svc := NewService[Country](client, nil, "country", "countries")
	page, err := svc.List(context.Background(), 2, 5, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalPages != 4 || len(page.Items) != 1 || page.Items[0].TitleEN != "Ukraine" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotReqID == "" {
		t.Fatalf("X-Request-ID missing")
	}
}

func TestServiceListFilters(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("kitchen_id") != "3" {
			t.Errorf("filter missing: %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(Page[Company]{TotalPages: 1})
	}))

	svc := NewService[Company](client, nil, "company", "companies")
	if _, err := svc.List(context.Background(), 1, 5, map[string]string{"kitchen_id": "3"}); err != nil {
		t.Fatalf("List: %v", err)
	}
}

func TestServiceDeleteNotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	svc := NewService[Kitchen](client, nil, "kitchen", "kitchens")
	err := svc.Delete(context.Background(), "9", 42)
	if err == nil {
		t.Fatalf("expected error for deleted entity")
	}
	var re *RemoteError
	if !errors.As(err, &re) || re.Status != http.StatusNotFound {
		t.Fatalf("expected 404 RemoteError, got %v", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("404 should wrap ErrNotFound: %v", err)
	}
}

func TestServiceServerError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	svc := NewService[Product](client, nil, "product", "products")
	_, err := svc.List(context.Background(), 1, 5, nil)
	var re *RemoteError
	if !errors.As(err, &re) || re.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 RemoteError, got %v", err)
	}
	if !IsRemote(err) {
		t.Fatalf("IsRemote misses RemoteError")
	}
}

func TestServiceListCacheAndInvalidation(t *testing.T) {
	var listCalls atomic.Int64
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listCalls.Add(1)
			json.NewEncoder(w).Encode(Page[Country]{
				Items:      []Country{{ID: "1", TitleEN: "Ukraine"}},
				TotalPages: 1,
			})
		case http.MethodPost:
			json.NewEncoder(w).Encode(Country{ID: "2", TitleEN: "Italy"})
		}
	}))

	cache, err := NewCache(time.Minute)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	svc := NewService[Country](client, cache, "country", "countries")
	ctx := context.Background()

	if _, err := svc.List(ctx, 1, 5, nil); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := svc.List(ctx, 1, 5, nil); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := listCalls.Load(); got != 1 {
		t.Fatalf("expected 1 upstream call before invalidation, got %d", got)
	}

	if _, err := svc.Create(ctx, 42, map[string]string{"title_en": "Italy"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.List(ctx, 1, 5, nil); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := listCalls.Load(); got != 2 {
		t.Fatalf("expected refetch after mutation, got %d calls", got)
	}
}

func TestCacheDisabled(t *testing.T) {
	cache, err := NewCache(0)
	if err != nil {
		t.Fatalf("NewCache(0): %v", err)
	}
	if cache != nil {
		t.Fatalf("ttl<=0 should disable the cache")
	}
	// nil cache is safe to use
	cache.Set("country", "k", []byte("v"))
	if _, ok := cache.Get("country", "k"); ok {
		t.Fatalf("disabled cache returned a hit")
	}
	cache.Invalidate("country")
}

func TestListCacheKeyDeterministic(t *testing.T) {
	a := listCacheKey(2, 5, map[string]string{"kitchen_id": "3", "country_id": "1"})
	b := listCacheKey(2, 5, map[string]string{"country_id": "1", "kitchen_id": "3"})
	if a != b {
		t.Fatalf("cache key depends on map order: %q vs %q", a, b)
	}
	if a == listCacheKey(3, 5, map[string]string{"country_id": "1", "kitchen_id": "3"}) {
		t.Fatalf("cache key ignores page")
	}
}
