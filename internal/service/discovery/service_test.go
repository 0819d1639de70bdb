package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// fakeListingStore serves candidates from memory, honoring the box and the
// conjunctive filters the way the SQL store does.
type fakeListingStore struct {
	listings []catalog.Listing
}

func (f *fakeListingStore) FindInBox(_ context.Context, box geo.BoundingBox, filter catalog.Filter) ([]catalog.Listing, error) {
	var out []catalog.Listing
	for _, l := range f.listings {
		if l.Position == nil || !box.Contains(l.Position.Latitude, l.Position.Longitude) {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && l.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && l.Price > *filter.MaxPrice {
			continue
		}
		if filter.OnlyFeatured && !l.IsFeatured {
			continue
		}
		if filter.OnlyBoosted && !l.IsBoosted {
			continue
		}
		if !filter.CreatedAfter.IsZero() && l.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type fakeActorStore struct {
	actors []actor.Actor
}

func (f *fakeActorStore) FindInBox(_ context.Context, box geo.BoundingBox, q actor.Query) ([]actor.Actor, error) {
	var out []actor.Actor
	for _, a := range f.actors {
		if a.Position == nil || !box.Contains(a.Position.Latitude, a.Position.Longitude) {
			continue
		}
		if q.Role != "" && a.Role != q.Role {
			continue
		}
		if q.MinRating > 0 && a.Rating < q.MinRating {
			continue
		}
		if q.OnlyVerified && !a.Verified {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type fakeEnrichmentStore struct {
	tagsErr error
}

func (f *fakeEnrichmentStore) Images(_ context.Context, listingID string) ([]string, error) {
	return []string{"https://img/" + listingID + ".jpg"}, nil
}

func (f *fakeEnrichmentStore) Tags(_ context.Context, listingID string) ([]string, error) {
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return []string{"tag-" + listingID}, nil
}

func (f *fakeEnrichmentStore) Shop(_ context.Context, ownerID string) (*catalog.ShopSummary, error) {
	return &catalog.ShopSummary{ID: "shop-" + ownerID, Name: "Shop"}, nil
}

func (f *fakeEnrichmentStore) OrderStats(_ context.Context, actorID string) (*actor.OrderStats, error) {
	return &actor.OrderStats{TotalOrders: 4, TopCategories: []string{"electronics"}}, nil
}

func listingAt(id string, lat, lng float64) catalog.Listing {
	return catalog.Listing{
		ID:        id,
		Price:     100,
		Category:  "electronics",
		CreatedAt: time.Now(),
		Position:  &geo.Position{Latitude: lat, Longitude: lng},
	}
}

func newTestService(listings []catalog.Listing, actors []actor.Actor) *Service {
	return NewService(
		&fakeListingStore{listings: listings},
		&fakeActorStore{actors: actors},
		&fakeEnrichmentStore{},
		Config{QueryTimeout: time.Second, EnrichTimeout: time.Second},
	)
}

func TestNearbyProductsExactRadius(t *testing.T) {
	// One listing ~1.57km from the origin, one ~157km away
	svc := newTestService([]catalog.Listing{
		listingAt("near", 0.01, 0.01),
		listingAt("far", 1, 1),
	}, nil)

	res, err := svc.NearbyProducts(context.Background(), ProductQuery{
		RadiusKm: 5,
		Sort:     catalog.SortDistance,
	})
	require.NoError(t, err)

	require.Len(t, res.Products, 1)
	assert.Equal(t, "near", res.Products[0].ID)
	assert.InDelta(t, 1.57, res.Products[0].DistanceKm, 0.02)
	assert.Equal(t, 1, res.TotalInRadius)
}

func TestNearbyProductsRadiusMonotonicity(t *testing.T) {
	var listings []catalog.Listing
	for i := 0; i < 30; i++ {
		listings = append(listings, listingAt(fmt.Sprintf("l%02d", i), float64(i)*0.01, 0))
	}
	svc := newTestService(listings, nil)

	idsAt := func(radius float64) map[string]bool {
		res, err := svc.NearbyProducts(context.Background(), ProductQuery{
			RadiusKm: radius,
			Page:     catalog.Page{Limit: 100},
		})
		require.NoError(t, err)
		ids := map[string]bool{}
		for _, p := range res.Products {
			ids[p.ID] = true
		}
		return ids
	}

	small := idsAt(5)
	large := idsAt(20)

	assert.Greater(t, len(large), len(small))
	for id := range small {
		assert.True(t, large[id], "result for smaller radius must be a subset")
	}
}

func TestNearbyProductsRankingMonotonic(t *testing.T) {
	listings := []catalog.Listing{
		listingAt("a", 0.02, 0),
		listingAt("b", 0.01, 0),
		listingAt("c", 0.03, 0),
	}
	listings[0].Price = 30
	listings[1].Price = 10
	listings[2].Price = 20

	svc := newTestService(listings, nil)

	res, err := svc.NearbyProducts(context.Background(), ProductQuery{
		RadiusKm: 10,
		Sort:     catalog.SortDistance,
	})
	require.NoError(t, err)
	for i := 1; i < len(res.Products); i++ {
		assert.LessOrEqual(t, res.Products[i-1].DistanceKm, res.Products[i].DistanceKm)
	}

	res, err = svc.NearbyProducts(context.Background(), ProductQuery{
		RadiusKm: 10,
		Sort:     catalog.SortPriceAsc,
	})
	require.NoError(t, err)
	for i := 1; i < len(res.Products); i++ {
		assert.LessOrEqual(t, res.Products[i-1].Price, res.Products[i].Price)
	}

	res, err = svc.NearbyProducts(context.Background(), ProductQuery{
		RadiusKm: 10,
		Sort:     catalog.SortPriceDesc,
	})
	require.NoError(t, err)
	for i := 1; i < len(res.Products); i++ {
		assert.GreaterOrEqual(t, res.Products[i-1].Price, res.Products[i].Price)
	}
}

func TestNearbyProductsPaginationStable(t *testing.T) {
	// Equal prices force the id tiebreak to keep pages disjoint
	var listings []catalog.Listing
	for i := 0; i < 25; i++ {
		l := listingAt(fmt.Sprintf("l%02d", i), 0.001*float64(i%3), 0)
		l.Price = 50
		listings = append(listings, l)
	}
	svc := newTestService(listings, nil)

	seen := map[string]int{}
	for page := 1; page <= 3; page++ {
		res, err := svc.NearbyProducts(context.Background(), ProductQuery{
			RadiusKm: 10,
			Sort:     catalog.SortPriceAsc,
			Page:     catalog.Page{Page: page, Limit: 10},
		})
		require.NoError(t, err)
		for _, p := range res.Products {
			seen[p.ID]++
		}
	}

	assert.Len(t, seen, 25, "no id may be skipped across pages")
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %s duplicated across pages", id)
	}
}

func TestNearbyProductsRejectsInvalidInput(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.NearbyProducts(context.Background(), ProductQuery{RadiusKm: 5, Latitude: 95})
	assert.True(t, fault.IsKind(err, fault.Validation))

	_, err = svc.NearbyProducts(context.Background(), ProductQuery{RadiusKm: -1})
	assert.True(t, fault.IsKind(err, fault.Validation))

	_, err = svc.NearbyProducts(context.Background(), ProductQuery{
		RadiusKm: 5,
		Page:     catalog.Page{Page: -1, Limit: 10},
	})
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestEnrichmentDegradesPerField(t *testing.T) {
	svc := NewService(
		&fakeListingStore{listings: []catalog.Listing{listingAt("x", 0.01, 0.01)}},
		&fakeActorStore{},
		&fakeEnrichmentStore{tagsErr: errors.New("tags table unavailable")},
		Config{QueryTimeout: time.Second, EnrichTimeout: time.Second},
	)

	res, err := svc.NearbyProducts(context.Background(), ProductQuery{RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)

	p := res.Products[0]
	assert.Empty(t, p.Tags, "failed fetch degrades to empty")
	assert.NotEmpty(t, p.Images, "unrelated fields keep their values")
	assert.NotNil(t, p.Shop)
}

func TestNewProductsNearbyWindow(t *testing.T) {
	fresh := listingAt("fresh", 0.01, 0)
	stale := listingAt("stale", 0.01, 0.01)
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)

	svc := newTestService([]catalog.Listing{fresh, stale}, nil)

	res, err := svc.NewProductsNearby(context.Background(), 0, 0, 5, 15)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "fresh", res[0].ID)
}

func TestNearbySellersFiltersAndSorts(t *testing.T) {
	svc := newTestService(nil, []actor.Actor{
		{ID: "s1", Role: actor.RoleSeller, Rating: 4.5, Position: &geo.Position{Latitude: 0.02, Longitude: 0}},
		{ID: "s2", Role: actor.RoleSeller, Rating: 3.0, Position: &geo.Position{Latitude: 0.01, Longitude: 0}},
		{ID: "b1", Role: actor.RoleBuyer, Rating: 5.0, Position: &geo.Position{Latitude: 0.01, Longitude: 0}},
	})

	sellers, err := svc.NearbySellers(context.Background(), 0, 0, 10, actor.Query{MinRating: 2})
	require.NoError(t, err)
	require.Len(t, sellers, 2)
	assert.Equal(t, "s2", sellers[0].ID, "closest seller first")

	sellers, err = svc.NearbySellers(context.Background(), 0, 0, 10, actor.Query{MinRating: 4})
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, "s1", sellers[0].ID)
}

func TestNearbyBuyersAnalytics(t *testing.T) {
	svc := newTestService(nil, []actor.Actor{
		{ID: "b1", Role: actor.RoleBuyer, Position: &geo.Position{Latitude: 0.01, Longitude: 0}},
		{ID: "b2", Role: actor.RoleBuyer, Position: &geo.Position{Latitude: 0.02, Longitude: 0}},
	})

	buyers, analytics, err := svc.NearbyBuyers(context.Background(), 0, 0, 5, 0)
	require.NoError(t, err)
	require.Len(t, buyers, 2)
	require.NotNil(t, analytics)
	assert.Equal(t, 2, analytics.TotalBuyers)
	assert.InDelta(t, 4.0, analytics.AvgOrders, 1e-9)
	assert.Contains(t, analytics.TopCategories, "electronics")
}

func TestGetAreaStats(t *testing.T) {
	listings := []catalog.Listing{
		listingAt("l1", 0.001, 0),
		listingAt("l2", 0.002, 0),
		listingAt("l3", 0.003, 0),
	}
	listings[2].Category = "furniture"
	listings[2].CreatedAt = time.Now().Add(-48 * time.Hour)

	svc := newTestService(listings, []actor.Actor{
		{ID: "s1", Role: actor.RoleSeller, Position: &geo.Position{Latitude: 0.001, Longitude: 0}},
	})

	stats, err := svc.GetAreaStats(context.Background(), 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Products)
	assert.Equal(t, 1, stats.Sellers)
	assert.Equal(t, 2, stats.RecentActivity)
	require.NotEmpty(t, stats.PopularCategories)
	assert.Equal(t, "electronics", stats.PopularCategories[0].Category)
	assert.NotEmpty(t, stats.MarketDensity)
	assert.NotEmpty(t, stats.Recommendations)
}
