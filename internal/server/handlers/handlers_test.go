package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/cache"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/config"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/discovery"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/position"
)

type fakeListingStore struct {
	listings []catalog.Listing
}

func (f *fakeListingStore) FindInBox(_ context.Context, box geo.BoundingBox, _ catalog.Filter) ([]catalog.Listing, error) {
	var out []catalog.Listing
	for _, l := range f.listings {
		if l.Position != nil && box.Contains(l.Position.Latitude, l.Position.Longitude) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeActorStore struct{}

func (fakeActorStore) FindInBox(context.Context, geo.BoundingBox, actor.Query) ([]actor.Actor, error) {
	return nil, nil
}

type fakeEnrichmentStore struct{}

func (fakeEnrichmentStore) Images(context.Context, string) ([]string, error) { return nil, nil }
func (fakeEnrichmentStore) Tags(context.Context, string) ([]string, error)  { return nil, nil }
func (fakeEnrichmentStore) Shop(context.Context, string) (*catalog.ShopSummary, error) {
	return nil, nil
}
func (fakeEnrichmentStore) OrderStats(context.Context, string) (*actor.OrderStats, error) {
	return nil, nil
}

type fakePositionStore struct {
	updated []actor.PositionRecord
}

func (f *fakePositionStore) UpdatePosition(_ context.Context, rec actor.PositionRecord) error {
	f.updated = append(f.updated, rec)
	return nil
}

func (f *fakePositionStore) AllPositions(context.Context) ([]actor.Actor, error) {
	return nil, nil
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Size:               16,
		NearbyProductsTTL:  30 * time.Second,
		NewProductsTTL:     30 * time.Second,
		NearbySellersTTL:   30 * time.Second,
		NearbyBuyersTTL:    30 * time.Second,
		AreaStatsTTL:       30 * time.Second,
		RecommendationsTTL: 30 * time.Second,
	}
}

func newDiscoveryHandler(t *testing.T, listings []catalog.Listing) *DiscoveryHandler {
	t.Helper()

	svc := discovery.NewService(
		&fakeListingStore{listings: listings},
		fakeActorStore{},
		fakeEnrichmentStore{},
		discovery.Config{QueryTimeout: time.Second, EnrichTimeout: time.Second},
	)
	return NewDiscoveryHandler(svc, cache.NewLRUCache(16, time.Minute), testCacheConfig())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body map[string]interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNearbyProductsEnvelope(t *testing.T) {
	h := newDiscoveryHandler(t, []catalog.Listing{
		{
			ID:       "l1",
			Title:    "Bike",
			Position: &geo.Position{Latitude: 0.01, Longitude: 0.01},
		},
	})

	rec := postJSON(t, h.NearbyProducts, map[string]interface{}{
		"latitude": 0.0, "longitude": 0.0, "radius_km": 5.0,
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(1), body["total_in_radius"])
}

func TestNearbyProductsInvalidCoordinates(t *testing.T) {
	h := newDiscoveryHandler(t, nil)

	rec := postJSON(t, h.NearbyProducts, map[string]interface{}{
		"latitude": 120.0, "longitude": 0.0,
	}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestNearbyProductsUnknownSortKey(t *testing.T) {
	h := newDiscoveryHandler(t, nil)

	rec := postJSON(t, h.NearbyProducts, map[string]interface{}{
		"latitude": 0.0, "longitude": 0.0, "sort_by": "random",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNearbyProductsCacheHitIsByteIdentical(t *testing.T) {
	h := newDiscoveryHandler(t, []catalog.Listing{
		{ID: "l1", Position: &geo.Position{Latitude: 0.01, Longitude: 0.01}},
	})

	body := map[string]interface{}{"latitude": 0.0, "longitude": 0.0, "radius_km": 5.0}

	first := postJSON(t, h.NearbyProducts, body, nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("X-Cache"))

	second := postJSON(t, h.NearbyProducts, body, nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestNearbyBuyersRequiresAuth(t *testing.T) {
	h := newDiscoveryHandler(t, nil)

	rec := postJSON(t, h.NearbyBuyers, map[string]interface{}{
		"latitude": 0.0, "longitude": 0.0,
	}, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func newPositionHandler(store *fakePositionStore) *PositionHandler {
	svc := position.NewService(
		store,
		position.NewLiveIndex(),
		nil,
		nil,
		position.NewGeofenceRegistry(),
		position.Config{StoreTimeout: time.Second},
	)
	return NewPositionHandler(svc)
}

func TestUpdatePositionPersistsForCaller(t *testing.T) {
	store := &fakePositionStore{}
	h := newPositionHandler(store)

	rec := postJSON(t, h.UpdatePosition, map[string]interface{}{
		"latitude": 48.85, "longitude": 2.35, "accuracy": 12.0,
	}, map[string]string{"X-User-ID": "u1"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["timestamp"])

	require.Len(t, store.updated, 1)
	assert.Equal(t, "u1", store.updated[0].UserID)
}

func TestUpdatePositionRequiresAuth(t *testing.T) {
	h := newPositionHandler(&fakePositionStore{})

	rec := postJSON(t, h.UpdatePosition, map[string]interface{}{
		"latitude": 48.85, "longitude": 2.35,
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPreciseLocationRejectsLowAccuracy(t *testing.T) {
	h := newPositionHandler(&fakePositionStore{})

	rec := postJSON(t, h.PreciseLocation, map[string]interface{}{
		"latitude": 48.85, "longitude": 2.35, "accuracy": 150.0,
	}, map[string]string{"X-User-ID": "u1"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "≤ 100m", body["required_accuracy"])
	assert.Equal(t, float64(150), body["provided_accuracy"])
}

func TestNotFoundEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()

	NotFound(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}
