// internal/service/navigation/service.go

// Package navigation estimates straight-line routes. It is explicitly not a
// router: distance is great-circle, duration comes from fixed mode speeds,
// and the instructions are canned.
package navigation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
	nav "github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/navigation"
)

// RouteStore persists navigation-history records
type RouteStore interface {
	SaveRoute(ctx context.Context, r nav.Route) error
}

// ListingStore resolves a product destination
type ListingStore interface {
	GetListing(ctx context.Context, id string) (*catalog.Listing, error)
}

// ActorStore resolves a seller destination
type ActorStore interface {
	GetActor(ctx context.Context, id string) (*actor.Actor, error)
}

// Config contains configuration for the navigation service
type Config struct {
	StoreTimeout time.Duration
}

// Service implements navigation estimates
type Service struct {
	routes   RouteStore
	listings ListingStore
	actors   ActorStore
	config   Config
}

// NewService creates a new navigation service
func NewService(routes RouteStore, listings ListingStore, actors ActorStore, config Config) *Service {
	return &Service{
		routes:   routes,
		listings: listings,
		actors:   actors,
		config:   config,
	}
}

// Request describes a navigation estimate
type Request struct {
	UserID         string
	StartLatitude  float64
	StartLongitude float64
	EndLatitude    float64
	EndLongitude   float64
	Mode           nav.Mode
	ProductID      string
	SellerID       string
}

// Destination describes what the route points at
type Destination struct {
	Kind  string  `json:"kind"`
	ID    string  `json:"id,omitempty"`
	Label string  `json:"label"`
	Lat   float64 `json:"latitude"`
	Lng   float64 `json:"longitude"`
}

// Estimate is a computed route with its persisted identifier
type Estimate struct {
	Route       nav.Route    `json:"route"`
	Destination *Destination `json:"destination,omitempty"`
	SafetyTips  []string     `json:"safety_tips"`
}

// Estimate computes the straight-line distance and mode-dependent duration,
// persists a navigation-history record, and resolves the destination.
func (s *Service) Estimate(ctx context.Context, req Request) (*Estimate, error) {
	if !geo.ValidCoordinates(req.StartLatitude, req.StartLongitude) ||
		!geo.ValidCoordinates(req.EndLatitude, req.EndLongitude) {
		return nil, fault.New(fault.Validation, "invalid coordinates")
	}
	if req.Mode == "" {
		req.Mode = nav.ModeWalking
	}
	if !req.Mode.Valid() {
		return nil, fault.Newf(fault.Validation, "unknown travel mode %q", req.Mode)
	}

	distanceKm := geo.Haversine(req.StartLatitude, req.StartLongitude, req.EndLatitude, req.EndLongitude)
	minutes := distanceKm / req.Mode.SpeedKmh() * 60

	route := nav.Route{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		StartLatitude:    req.StartLatitude,
		StartLongitude:   req.StartLongitude,
		EndLatitude:      req.EndLatitude,
		EndLongitude:     req.EndLongitude,
		Mode:             req.Mode,
		DistanceKm:       distanceKm,
		EstimatedMinutes: minutes,
		Steps:            steps(distanceKm, req.Mode),
		CreatedAt:        time.Now().UTC(),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()
	if err := s.routes.SaveRoute(storeCtx, route); err != nil {
		return nil, fault.Wrap(fault.Dependency, "navigation history write failed", err)
	}

	est := &Estimate{
		Route:      route,
		SafetyTips: safetyTips(req.Mode),
	}
	est.Destination = s.resolveDestination(ctx, req)

	return est, nil
}

// steps produces the canned depart/continue/arrive instructions. The
// continue step only appears on routes longer than a kilometer.
func steps(distanceKm float64, mode nav.Mode) []nav.Step {
	out := []nav.Step{
		{Instruction: fmt.Sprintf("Head toward your destination (%s)", mode), DistanceKm: 0},
	}
	if distanceKm > 1 {
		out = append(out, nav.Step{
			Instruction: fmt.Sprintf("Continue for %.1f km", distanceKm),
			DistanceKm:  distanceKm,
		})
	}
	out = append(out, nav.Step{
		Instruction: "You have arrived at your destination",
		DistanceKm:  distanceKm,
	})
	return out
}

func safetyTips(mode nav.Mode) []string {
	switch mode {
	case nav.ModeDriving:
		return []string{
			"Park in a public, well-lit area",
			"Verify the product before paying",
		}
	case nav.ModeCycling:
		return []string{
			"Secure your bike at the meeting point",
			"Prefer daylight meetings",
		}
	default:
		return []string{
			"Meet in a busy public place",
			"Share your route with someone you trust",
		}
	}
}

// resolveDestination attaches the listing or seller the route targets. A
// lookup failure degrades to a plain coordinate destination.
func (s *Service) resolveDestination(ctx context.Context, req Request) *Destination {
	dest := &Destination{
		Kind:  "point",
		Label: fmt.Sprintf("%.5f, %.5f", req.EndLatitude, req.EndLongitude),
		Lat:   req.EndLatitude,
		Lng:   req.EndLongitude,
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	switch {
	case req.ProductID != "":
		l, err := s.listings.GetListing(storeCtx, req.ProductID)
		if err != nil {
			log.Printf("navigation destination lookup degraded: %v", err)
			return dest
		}
		dest.Kind = "product"
		dest.ID = l.ID
		dest.Label = l.Title
	case req.SellerID != "":
		a, err := s.actors.GetActor(storeCtx, req.SellerID)
		if err != nil {
			log.Printf("navigation destination lookup degraded: %v", err)
			return dest
		}
		dest.Kind = "seller"
		dest.ID = a.ID
		dest.Label = a.Name
	}

	return dest
}
