// internal/domain/catalog/model.go

package catalog

import (
	"time"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// Listing represents a marketplace product
type Listing struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Price           float64       `json:"price"`
	Category        string        `json:"category"`
	Condition       string        `json:"condition,omitempty"`
	OwnerID         string        `json:"owner_id"`
	Rating          float64       `json:"rating"`
	PopularityScore float64       `json:"popularity_score"`
	IsFeatured      bool          `json:"is_featured"`
	IsBoosted       bool          `json:"is_boosted"`
	BoostEnd        *time.Time    `json:"boost_end,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	Position        *geo.Position `json:"position,omitempty"`

	// DistanceKm is computed against the query point, never stored.
	DistanceKm float64 `json:"distance_km"`
}

// SortKey selects the ordering of a result set
type SortKey string

const (
	SortDistance  SortKey = "distance"
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortPopular   SortKey = "popular"
)

// ParseSortKey maps a request value onto a sort key, defaulting to distance.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortDistance, SortNewest, SortPriceAsc, SortPriceDesc, SortPopular:
		return SortKey(s), true
	case "":
		return SortDistance, true
	default:
		return SortDistance, false
	}
}

// Filter defines conjunctive predicates applied before sorting
type Filter struct {
	Category     string
	MinPrice     *float64
	MaxPrice     *float64
	Condition    string
	MinRating    float64
	OnlyFeatured bool
	OnlyBoosted  bool
	CreatedAfter time.Time
}

// Page describes a pagination window. Offset is (Page-1)*Limit.
type Page struct {
	Page  int
	Limit int
}

// Normalize applies defaults and rejects non-positive values.
func (p Page) Normalize(defaultLimit int) (Page, bool) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	if p.Page < 1 || p.Limit < 1 {
		return p, false
	}
	return p, true
}

// Offset returns the start index of the window.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ShopSummary is the owning-shop attribution attached during enrichment
type ShopSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Verified bool    `json:"verified"`
}

// EnrichedListing is a listing with its independently fetched attributes.
// A failed enrichment degrades the affected field to its zero value.
type EnrichedListing struct {
	Listing
	Images []string     `json:"images"`
	Tags   []string     `json:"tags"`
	Shop   *ShopSummary `json:"shop,omitempty"`
}
