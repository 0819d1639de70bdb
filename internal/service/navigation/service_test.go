package navigation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	nav "github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/navigation"
)

type fakeRouteStore struct {
	saved []nav.Route
}

func (f *fakeRouteStore) SaveRoute(_ context.Context, r nav.Route) error {
	f.saved = append(f.saved, r)
	return nil
}

type fakeListingStore struct {
	listing *catalog.Listing
}

func (f *fakeListingStore) GetListing(_ context.Context, id string) (*catalog.Listing, error) {
	if f.listing == nil || f.listing.ID != id {
		return nil, fault.Newf(fault.NotFound, "listing %s not found", id)
	}
	return f.listing, nil
}

type fakeActorStore struct {
	seller *actor.Actor
}

func (f *fakeActorStore) GetActor(_ context.Context, id string) (*actor.Actor, error) {
	if f.seller == nil || f.seller.ID != id {
		return nil, fault.Newf(fault.NotFound, "actor %s not found", id)
	}
	return f.seller, nil
}

func newTestService(routes *fakeRouteStore, listings *fakeListingStore, actors *fakeActorStore) *Service {
	return NewService(routes, listings, actors, Config{StoreTimeout: time.Second})
}

// Paris center to the Boulogne area, roughly 8.4 km apart.
var testRequest = Request{
	UserID:         "u1",
	StartLatitude:  48.8566,
	StartLongitude: 2.3522,
	EndLatitude:    48.8397,
	EndLongitude:   2.2399,
}

func TestEstimateModeSpeeds(t *testing.T) {
	routes := &fakeRouteStore{}
	svc := newTestService(routes, &fakeListingStore{}, &fakeActorStore{})

	cases := []struct {
		mode     nav.Mode
		speedKmh float64
	}{
		{nav.ModeWalking, 5},
		{nav.ModeDriving, 40},
		{nav.ModeCycling, 15},
	}

	for _, tc := range cases {
		req := testRequest
		req.Mode = tc.mode

		est, err := svc.Estimate(context.Background(), req)
		require.NoError(t, err)

		assert.InDelta(t, 8.4, est.Route.DistanceKm, 0.5)
		assert.InDelta(t, est.Route.DistanceKm/tc.speedKmh*60, est.Route.EstimatedMinutes, 1e-9)
	}
}

func TestEstimateDefaultsToWalking(t *testing.T) {
	svc := newTestService(&fakeRouteStore{}, &fakeListingStore{}, &fakeActorStore{})

	est, err := svc.Estimate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, nav.ModeWalking, est.Route.Mode)
}

func TestEstimateRejectsUnknownMode(t *testing.T) {
	svc := newTestService(&fakeRouteStore{}, &fakeListingStore{}, &fakeActorStore{})

	req := testRequest
	req.Mode = "teleport"

	_, err := svc.Estimate(context.Background(), req)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestEstimateRejectsInvalidCoordinates(t *testing.T) {
	svc := newTestService(&fakeRouteStore{}, &fakeListingStore{}, &fakeActorStore{})

	req := testRequest
	req.EndLongitude = 200

	_, err := svc.Estimate(context.Background(), req)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestEstimateStepsShortRoute(t *testing.T) {
	svc := newTestService(&fakeRouteStore{}, &fakeListingStore{}, &fakeActorStore{})

	// ~110m apart, no continue step
	req := Request{
		StartLatitude: 0, StartLongitude: 0,
		EndLatitude: 0.001, EndLongitude: 0,
		Mode: nav.ModeWalking,
	}

	est, err := svc.Estimate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, est.Route.Steps, 2)
	assert.Contains(t, est.Route.Steps[1].Instruction, "arrived")
}

func TestEstimateStepsLongRoute(t *testing.T) {
	svc := newTestService(&fakeRouteStore{}, &fakeListingStore{}, &fakeActorStore{})

	est, err := svc.Estimate(context.Background(), testRequest)
	require.NoError(t, err)
	require.Len(t, est.Route.Steps, 3)
	assert.Contains(t, est.Route.Steps[1].Instruction, "Continue")
}

func TestEstimatePersistsRoute(t *testing.T) {
	routes := &fakeRouteStore{}
	svc := newTestService(routes, &fakeListingStore{}, &fakeActorStore{})

	est, err := svc.Estimate(context.Background(), testRequest)
	require.NoError(t, err)

	require.Len(t, routes.saved, 1)
	assert.Equal(t, est.Route.ID, routes.saved[0].ID)
	assert.NotEmpty(t, est.Route.ID)
	assert.Equal(t, "u1", routes.saved[0].UserID)
}

func TestEstimateResolvesProductDestination(t *testing.T) {
	listings := &fakeListingStore{listing: &catalog.Listing{ID: "l1", Title: "City bike"}}
	svc := newTestService(&fakeRouteStore{}, listings, &fakeActorStore{})

	req := testRequest
	req.ProductID = "l1"

	est, err := svc.Estimate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, est.Destination)
	assert.Equal(t, "product", est.Destination.Kind)
	assert.Equal(t, "City bike", est.Destination.Label)
}

func TestEstimateDegradesMissingDestination(t *testing.T) {
	svc := newTestService(&fakeRouteStore{}, &fakeListingStore{}, &fakeActorStore{})

	req := testRequest
	req.SellerID = "ghost"

	est, err := svc.Estimate(context.Background(), req)
	require.NoError(t, err, "a failed destination lookup must not fail the estimate")
	require.NotNil(t, est.Destination)
	assert.Equal(t, "point", est.Destination.Kind)
}
