// internal/service/recommend/service.go

// Package recommend blends history, location, trending and similar-actor
// signals into a personalized result set.
package recommend

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// Partition labels identify which signal produced an item.
const (
	PartitionHistory  = "history"
	PartitionLocation = "location"
	PartitionTrending = "trending"
	PartitionSimilar  = "similar_users"
)

// HistoryStore serves the per-user history and similarity queries
type HistoryStore interface {
	ViewedCategories(ctx context.Context, userID string, limit int) ([]string, error)
	LikedCategories(ctx context.Context, userID string, limit int) ([]string, error)
	FindByCategories(ctx context.Context, userID string, categories []string, limit int) ([]catalog.Listing, error)
	FindTrendingInBox(ctx context.Context, box geo.BoundingBox, since time.Time, limit int) ([]catalog.Listing, error)
	FindBySimilarActors(ctx context.Context, userID string, limit int) ([]catalog.Listing, error)
}

// ListingStore serves the pure-location partition
type ListingStore interface {
	FindInBox(ctx context.Context, box geo.BoundingBox, f catalog.Filter) ([]catalog.Listing, error)
}

// Config contains configuration for the recommendation composer
type Config struct {
	RadiusKm       float64
	TrendingWindow time.Duration
	StoreTimeout   time.Duration
}

// Service composes recommendation sets per request; nothing is persisted.
type Service struct {
	history  HistoryStore
	listings ListingStore
	config   Config
}

// NewService creates a new recommendation composer
func NewService(history HistoryStore, listings ListingStore, config Config) *Service {
	if config.RadiusKm <= 0 {
		config.RadiusKm = 10
	}
	if config.TrendingWindow <= 0 {
		config.TrendingWindow = 7 * 24 * time.Hour
	}
	return &Service{
		history:  history,
		listings: listings,
		config:   config,
	}
}

// Item is one recommended listing tagged with its originating partition
type Item struct {
	catalog.Listing
	Source string `json:"source"`
}

// Result is an ephemeral, per-request recommendation set
type Result struct {
	UserPreferences []string `json:"user_preferences"`
	Recommendations []Item   `json:"recommendations"`

	// PersonalizationScore is the fraction of returned items attributable
	// to the personalized partitions. Diagnostic only, never a ranking
	// input.
	PersonalizationScore float64 `json:"personalization_score"`
}

// Compose blends the four partitions. Each partition is computed
// independently and capped at the requested limit on its own; a failing
// partition degrades to empty rather than failing the set.
func (s *Service) Compose(ctx context.Context, userID string, lat, lng float64, limit int) (*Result, error) {
	if !geo.ValidCoordinates(lat, lng) {
		return nil, fault.New(fault.Validation, "invalid coordinates")
	}
	if limit <= 0 {
		limit = 10
	}

	box, err := geo.NewBoundingBox(lat, lng, s.config.RadiusKm)
	if err != nil {
		return nil, fault.Wrap(fault.Validation, "invalid search area", err)
	}
	center := geo.Position{Latitude: lat, Longitude: lng}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	preferences := s.loadPreferences(storeCtx, userID, limit)

	type partition struct {
		source string
		items  []catalog.Listing
	}

	var wg sync.WaitGroup
	results := make(chan partition, 4)

	run := func(source string, fetch func() ([]catalog.Listing, error)) {
		defer wg.Done()
		items, err := fetch()
		if err != nil {
			log.Printf("recommendation partition %s degraded: %v", source, err)
			return
		}
		if len(items) > limit {
			items = items[:limit]
		}
		results <- partition{source: source, items: items}
	}

	wg.Add(4)
	go run(PartitionHistory, func() ([]catalog.Listing, error) {
		return s.history.FindByCategories(storeCtx, userID, preferences, limit)
	})
	go run(PartitionLocation, func() ([]catalog.Listing, error) {
		candidates, err := s.listings.FindInBox(storeCtx, box, catalog.Filter{})
		if err != nil {
			return nil, err
		}
		return nearest(center, s.config.RadiusKm, candidates), nil
	})
	go run(PartitionTrending, func() ([]catalog.Listing, error) {
		items, err := s.history.FindTrendingInBox(storeCtx, box, time.Now().Add(-s.config.TrendingWindow), limit)
		if err != nil {
			return nil, err
		}
		return withinRadius(center, s.config.RadiusKm, items), nil
	})
	go run(PartitionSimilar, func() ([]catalog.Listing, error) {
		return s.history.FindBySimilarActors(storeCtx, userID, limit)
	})

	wg.Wait()
	close(results)

	collected := map[string][]catalog.Listing{}
	for p := range results {
		collected[p.source] = p.items
	}

	result := &Result{
		UserPreferences: preferences,
		Recommendations: []Item{},
	}

	// Personalized partitions first so a listing surfaced by both signals
	// is attributed to the personalized one.
	personalized := 0
	seen := map[string]bool{}
	for _, source := range []string{PartitionHistory, PartitionSimilar, PartitionLocation, PartitionTrending} {
		for _, l := range collected[source] {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			result.Recommendations = append(result.Recommendations, Item{Listing: l, Source: source})
			if source == PartitionHistory || source == PartitionSimilar {
				personalized++
			}
		}
	}

	if n := len(result.Recommendations); n > 0 {
		result.PersonalizationScore = float64(personalized) / float64(n)
	}

	return result, nil
}

// loadPreferences merges viewed and liked categories, views first.
func (s *Service) loadPreferences(ctx context.Context, userID string, limit int) []string {
	viewed, err := s.history.ViewedCategories(ctx, userID, limit)
	if err != nil {
		log.Printf("view history degraded for %s: %v", userID, err)
	}
	liked, err := s.history.LikedCategories(ctx, userID, limit)
	if err != nil {
		log.Printf("like history degraded for %s: %v", userID, err)
	}

	seen := map[string]bool{}
	prefs := []string{}
	for _, c := range append(viewed, liked...) {
		if !seen[c] {
			seen[c] = true
			prefs = append(prefs, c)
		}
	}
	return prefs
}

// withinRadius keeps candidates inside the exact radius, distance attached.
func withinRadius(center geo.Position, radiusKm float64, candidates []catalog.Listing) []catalog.Listing {
	kept := make([]catalog.Listing, 0, len(candidates))
	for _, l := range candidates {
		if l.Position == nil {
			continue
		}
		d := geo.Distance(center, *l.Position)
		if d <= radiusKm {
			l.DistanceKm = d
			kept = append(kept, l)
		}
	}
	return kept
}

// nearest is withinRadius ordered by distance with id tiebreak.
func nearest(center geo.Position, radiusKm float64, candidates []catalog.Listing) []catalog.Listing {
	kept := withinRadius(center, radiusKm, candidates)
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].DistanceKm != kept[j].DistanceKm {
			return kept[i].DistanceKm < kept[j].DistanceKm
		}
		return kept[i].ID < kept[j].ID
	})
	return kept
}
