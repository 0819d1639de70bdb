// internal/service/discovery/service.go

// Package discovery implements the location-aware discovery and ranking
// engine: bounding-box pre-filtered spatial queries, exact haversine
// filtering, multi-criteria ranking with deterministic pagination, and the
// concurrent enrichment pipeline.
package discovery

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// ListingStore is the record-store surface the engine queries for listings
type ListingStore interface {
	FindInBox(ctx context.Context, box geo.BoundingBox, f catalog.Filter) ([]catalog.Listing, error)
}

// ActorStore is the record-store surface for sellers and buyers
type ActorStore interface {
	FindInBox(ctx context.Context, box geo.BoundingBox, q actor.Query) ([]actor.Actor, error)
}

// EnrichmentStore serves the independent per-result attribute fetches
type EnrichmentStore interface {
	Images(ctx context.Context, listingID string) ([]string, error)
	Tags(ctx context.Context, listingID string) ([]string, error)
	Shop(ctx context.Context, ownerID string) (*catalog.ShopSummary, error)
	OrderStats(ctx context.Context, actorID string) (*actor.OrderStats, error)
}

// Config contains configuration for the discovery service
type Config struct {
	QueryTimeout        time.Duration
	EnrichTimeout       time.Duration
	MaxConcurrentEnrich int
	DefaultLimit        int
}

// Service implements the discovery operations
type Service struct {
	listings   ListingStore
	actors     ActorStore
	enrichment EnrichmentStore
	config     Config
}

// NewService creates a new discovery service
func NewService(listings ListingStore, actors ActorStore, enrichment EnrichmentStore, config Config) *Service {
	if config.MaxConcurrentEnrich <= 0 {
		config.MaxConcurrentEnrich = 8
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 20
	}
	return &Service{
		listings:   listings,
		actors:     actors,
		enrichment: enrichment,
		config:     config,
	}
}

// ProductQuery describes a nearby-products request
type ProductQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Filter    catalog.Filter
	Sort      catalog.SortKey
	Page      catalog.Page
}

// ProductResult is a ranked, paginated, enriched result window
type ProductResult struct {
	Products      []catalog.EnrichedListing `json:"products"`
	Page          int                       `json:"page"`
	Limit         int                       `json:"limit"`
	TotalInRadius int                       `json:"total_in_radius"`
}

// NearbyProducts locates listings within the radius, ranks them, and
// enriches the requested page.
func (s *Service) NearbyProducts(ctx context.Context, q ProductQuery) (*ProductResult, error) {
	center, box, err := s.resolveArea(q.Latitude, q.Longitude, q.RadiusKm)
	if err != nil {
		return nil, err
	}

	page, ok := q.Page.Normalize(s.config.DefaultLimit)
	if !ok {
		return nil, fault.New(fault.Validation, "page and limit must be positive integers")
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	candidates, err := s.listings.FindInBox(queryCtx, box, q.Filter)
	if err != nil {
		return nil, fault.Wrap(fault.Dependency, "spatial query failed", err)
	}

	inRadius := withinRadius(center, q.RadiusKm, candidates)
	rank(inRadius, q.Sort)
	window := paginate(inRadius, page)

	return &ProductResult{
		Products:      s.enrichListings(ctx, window),
		Page:          page.Page,
		Limit:         page.Limit,
		TotalInRadius: len(inRadius),
	}, nil
}

// NewProductsNearby returns listings created within the last 24 hours inside
// the radius, newest first.
func (s *Service) NewProductsNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]catalog.EnrichedListing, error) {
	center, box, err := s.resolveArea(lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 15
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	candidates, err := s.listings.FindInBox(queryCtx, box, catalog.Filter{
		CreatedAfter: time.Now().Add(-24 * time.Hour),
	})
	if err != nil {
		return nil, fault.Wrap(fault.Dependency, "spatial query failed", err)
	}

	inRadius := withinRadius(center, radiusKm, candidates)
	rank(inRadius, catalog.SortNewest)
	if len(inRadius) > limit {
		inRadius = inRadius[:limit]
	}

	return s.enrichListings(ctx, inRadius), nil
}

// NearbySellers returns sellers within the radius matching the query,
// ordered by distance.
func (s *Service) NearbySellers(ctx context.Context, lat, lng, radiusKm float64, q actor.Query) ([]actor.Actor, error) {
	q.Role = actor.RoleSeller

	center, box, err := s.resolveArea(lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	candidates, err := s.actors.FindInBox(queryCtx, box, q)
	if err != nil {
		return nil, fault.Wrap(fault.Dependency, "spatial query failed", err)
	}

	return actorsWithinRadius(center, radiusKm, candidates), nil
}

// BuyerAnalytics summarizes the buyer set returned to a seller
type BuyerAnalytics struct {
	TotalBuyers   int      `json:"total_buyers"`
	AvgOrders     float64  `json:"avg_orders"`
	TopCategories []string `json:"top_categories"`
}

// NearbyBuyers returns buyers within the radius with their aggregate order
// statistics, plus analytics over the whole set.
func (s *Service) NearbyBuyers(ctx context.Context, lat, lng, radiusKm float64, minOrders int) ([]actor.EnrichedActor, *BuyerAnalytics, error) {
	center, box, err := s.resolveArea(lat, lng, radiusKm)
	if err != nil {
		return nil, nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	candidates, err := s.actors.FindInBox(queryCtx, box, actor.Query{
		Role:      actor.RoleBuyer,
		MinOrders: minOrders,
	})
	if err != nil {
		return nil, nil, fault.Wrap(fault.Dependency, "spatial query failed", err)
	}

	buyers := s.enrichActors(ctx, actorsWithinRadius(center, radiusKm, candidates))

	analytics := &BuyerAnalytics{TotalBuyers: len(buyers)}
	categoryCounts := map[string]int{}
	totalOrders := 0
	for _, b := range buyers {
		if b.Stats == nil {
			continue
		}
		totalOrders += b.Stats.TotalOrders
		for _, c := range b.Stats.TopCategories {
			categoryCounts[c]++
		}
	}
	if len(buyers) > 0 {
		analytics.AvgOrders = float64(totalOrders) / float64(len(buyers))
	}
	analytics.TopCategories = topKeys(categoryCounts, 3)

	return buyers, analytics, nil
}

// CategoryCount pairs a category with its listing count in an area
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// AreaStats aggregates marketplace activity around a point
type AreaStats struct {
	Products          int             `json:"products"`
	Sellers           int             `json:"sellers"`
	RecentActivity    int             `json:"recent_activity"`
	PopularCategories []CategoryCount `json:"popular_categories"`
	MarketDensity     string          `json:"market_density"`
	Recommendations   []string        `json:"recommendations"`
}

// GetAreaStats computes aggregate statistics for the zone around a point.
func (s *Service) GetAreaStats(ctx context.Context, lat, lng, radiusKm float64) (*AreaStats, error) {
	center, box, err := s.resolveArea(lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	listings, err := s.listings.FindInBox(queryCtx, box, catalog.Filter{})
	if err != nil {
		return nil, fault.Wrap(fault.Dependency, "spatial query failed", err)
	}
	sellers, err := s.actors.FindInBox(queryCtx, box, actor.Query{Role: actor.RoleSeller})
	if err != nil {
		return nil, fault.Wrap(fault.Dependency, "spatial query failed", err)
	}

	inRadius := withinRadius(center, radiusKm, listings)
	sellersInRadius := actorsWithinRadius(center, radiusKm, sellers)

	stats := &AreaStats{
		Products: len(inRadius),
		Sellers:  len(sellersInRadius),
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	categoryCounts := map[string]int{}
	for _, l := range inRadius {
		categoryCounts[l.Category]++
		if l.CreatedAt.After(cutoff) {
			stats.RecentActivity++
		}
	}

	for _, c := range topKeys(categoryCounts, 5) {
		stats.PopularCategories = append(stats.PopularCategories, CategoryCount{
			Category: c,
			Count:    categoryCounts[c],
		})
	}

	areaKm2 := math.Pi * radiusKm * radiusKm
	density := float64(len(inRadius)) / areaKm2
	switch {
	case density >= 20:
		stats.MarketDensity = "dense"
		stats.Recommendations = []string{
			"High competition area: differentiate on price or condition",
			"Boosts reach many buyers here",
		}
	case density >= 5:
		stats.MarketDensity = "active"
		stats.Recommendations = []string{
			"Balanced supply and demand in this zone",
		}
	case density >= 1:
		stats.MarketDensity = "moderate"
		stats.Recommendations = []string{
			"Few competing listings: good zone for new products",
		}
	default:
		stats.MarketDensity = "sparse"
		stats.Recommendations = []string{
			"Low activity zone: consider a larger radius",
		}
	}

	return stats, nil
}

// resolveArea validates the center and derives the bounding box.
func (s *Service) resolveArea(lat, lng, radiusKm float64) (geo.Position, geo.BoundingBox, error) {
	if !geo.ValidCoordinates(lat, lng) {
		return geo.Position{}, geo.BoundingBox{}, fault.New(fault.Validation, "invalid coordinates")
	}
	if radiusKm <= 0 {
		return geo.Position{}, geo.BoundingBox{}, fault.New(fault.Validation, "radius must be positive")
	}

	center := geo.Position{Latitude: lat, Longitude: lng}
	box, err := geo.NewBoundingBox(lat, lng, radiusKm)
	if err != nil {
		return geo.Position{}, geo.BoundingBox{}, fault.Wrap(fault.Validation, "invalid search area", err)
	}
	return center, box, nil
}

// actorsWithinRadius is the exact-distance filter for actors, ordered by
// distance with id tiebreak.
func actorsWithinRadius(center geo.Position, radiusKm float64, candidates []actor.Actor) []actor.Actor {
	results := make([]actor.Actor, 0, len(candidates))
	for _, a := range candidates {
		if a.Position == nil {
			continue
		}
		d := geo.Distance(center, *a.Position)
		if d <= radiusKm {
			a.DistanceKm = d
			results = append(results, a)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].ID < results[j].ID
	})

	return results
}

// topKeys returns the n keys with the highest counts, ties broken
// alphabetically for determinism.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
