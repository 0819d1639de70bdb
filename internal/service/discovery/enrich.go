// internal/service/discovery/enrich.go

package discovery

import (
	"context"
	"log"
	"sync"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
)

// enrichListings fans out the per-result attribute fetches with bounded
// concurrency and joins results positionally. Enrichment failures degrade
// the affected field to its default; they never fail the whole result.
func (s *Service) enrichListings(ctx context.Context, listings []catalog.Listing) []catalog.EnrichedListing {
	enriched := make([]catalog.EnrichedListing, len(listings))

	sem := make(chan struct{}, s.config.MaxConcurrentEnrich)
	var wg sync.WaitGroup

	for i := range listings {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			enriched[i] = s.enrichListing(ctx, listings[i])
		}(i)
	}

	wg.Wait()
	return enriched
}

// enrichListing issues the three independent fetches for one listing
// concurrently. Each goroutine owns a disjoint field, so no locking is
// needed for the merge.
func (s *Service) enrichListing(ctx context.Context, l catalog.Listing) catalog.EnrichedListing {
	e := catalog.EnrichedListing{
		Listing: l,
		Images:  []string{},
		Tags:    []string{},
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.EnrichTimeout)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		images, err := s.enrichment.Images(ctx, l.ID)
		if err != nil {
			log.Printf("enrichment: images for listing %s degraded: %v", l.ID, err)
			return
		}
		if images != nil {
			e.Images = images
		}
	}()

	go func() {
		defer wg.Done()
		tags, err := s.enrichment.Tags(ctx, l.ID)
		if err != nil {
			log.Printf("enrichment: tags for listing %s degraded: %v", l.ID, err)
			return
		}
		if tags != nil {
			e.Tags = tags
		}
	}()

	go func() {
		defer wg.Done()
		shop, err := s.enrichment.Shop(ctx, l.OwnerID)
		if err != nil {
			log.Printf("enrichment: shop for listing %s degraded: %v", l.ID, err)
			return
		}
		e.Shop = shop
	}()

	wg.Wait()
	return e
}

// enrichActors attaches aggregate order statistics to each actor, degrading
// per actor on failure.
func (s *Service) enrichActors(ctx context.Context, actors []actor.Actor) []actor.EnrichedActor {
	enriched := make([]actor.EnrichedActor, len(actors))

	sem := make(chan struct{}, s.config.MaxConcurrentEnrich)
	var wg sync.WaitGroup

	for i := range actors {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, s.config.EnrichTimeout)
			defer cancel()

			enriched[i] = actor.EnrichedActor{Actor: actors[i]}
			stats, err := s.enrichment.OrderStats(fetchCtx, actors[i].ID)
			if err != nil {
				log.Printf("enrichment: order stats for actor %s degraded: %v", actors[i].ID, err)
				return
			}
			enriched[i].Stats = stats
		}(i)
	}

	wg.Wait()
	return enriched
}
