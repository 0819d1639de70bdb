// internal/domain/actor/model.go

package actor

import (
	"time"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// Role distinguishes the two sides of the marketplace
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// Actor represents a seller or buyer with a last known position
type Actor struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Role     Role          `json:"role"`
	Rating   float64       `json:"rating"`
	Verified bool          `json:"verified"`
	Category string        `json:"category,omitempty"`
	Position *geo.Position `json:"position,omitempty"`

	// DistanceKm is computed against the query point, never stored.
	DistanceKm float64 `json:"distance_km"`
}

// OrderStats are aggregate order statistics attached to buyers during
// enrichment of the nearby-buyers flow.
type OrderStats struct {
	TotalOrders   int      `json:"total_orders"`
	TotalSpent    float64  `json:"total_spent"`
	TopCategories []string `json:"top_categories"`
}

// EnrichedActor is an actor with fan-out attributes merged in.
type EnrichedActor struct {
	Actor
	Stats *OrderStats `json:"stats,omitempty"`
}

// Query narrows an actor search. Predicates are conjunctive.
type Query struct {
	Role         Role
	MinRating    float64
	Category     string
	OnlyVerified bool
	MinOrders    int
}

// PositionRecord is one entry of the append-only position history log.
// (UserID, RecordedAt) is unique so replayed writes stay idempotent.
type PositionRecord struct {
	UserID     string    `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	SpeedKmh   float64   `json:"speed_kmh,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
