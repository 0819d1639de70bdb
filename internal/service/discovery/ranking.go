// internal/service/discovery/ranking.go

package discovery

import (
	"sort"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// withinRadius runs the exact great-circle check over box candidates and
// attaches the computed distance. The bounding box is only a superset
// pre-filter; this is the final authority.
func withinRadius(center geo.Position, radiusKm float64, candidates []catalog.Listing) []catalog.Listing {
	results := make([]catalog.Listing, 0, len(candidates))
	for _, l := range candidates {
		if l.Position == nil {
			continue
		}
		d := geo.Distance(center, *l.Position)
		if d <= radiusKm {
			l.DistanceKm = d
			results = append(results, l)
		}
	}
	return results
}

// rank orders listings by the sort key. The sort is stable and total: ties
// break by id ascending so pagination stays deterministic.
func rank(listings []catalog.Listing, key catalog.SortKey) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		switch key {
		case catalog.SortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case catalog.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case catalog.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case catalog.SortPopular:
			if a.PopularityScore != b.PopularityScore {
				return a.PopularityScore > b.PopularityScore
			}
		default: // distance
			if a.DistanceKm != b.DistanceKm {
				return a.DistanceKm < b.DistanceKm
			}
		}
		return a.ID < b.ID
	})
}

// paginate cuts the window [offset, offset+limit) out of the ranked set.
func paginate(listings []catalog.Listing, page catalog.Page) []catalog.Listing {
	offset := page.Offset()
	if offset >= len(listings) {
		return nil
	}
	end := offset + page.Limit
	if end > len(listings) {
		end = len(listings)
	}
	return listings[offset:end]
}
