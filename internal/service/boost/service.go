// internal/service/boost/service.go

// Package boost implements geo-targeted promotional boosts: pricing, reach
// estimation, and the payment-driven pending→active/failed lifecycle.
package boost

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	boostDomain "github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/boost"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
)

// BoostStore is the persistence surface for boost records
type BoostStore interface {
	SaveBoost(ctx context.Context, b boostDomain.Boost) error
	GetBoost(ctx context.Context, id string) (*boostDomain.Boost, error)
	SetStatus(ctx context.Context, id string, status boostDomain.Status) error
}

// ListingStore resolves boosted listings and applies the activation effect
type ListingStore interface {
	GetListing(ctx context.Context, id string) (*catalog.Listing, error)
	MarkBoosted(ctx context.Context, listingID string, boostEnd time.Time, popularityDelta float64) error
}

// ReachCounter counts actors inside a zone. The live position index
// satisfies this.
type ReachCounter interface {
	CountWithin(lat, lng, radiusKm float64) (int, error)
}

// Publisher publishes boost lifecycle events
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Config contains configuration for the boost service
type Config struct {
	BasePrice             float64
	VisibilityCoefficient float64
	PopularityDelta       float64
	EventsTopic           string
	StoreTimeout          time.Duration
}

// Service implements boost pricing, estimation and lifecycle
type Service struct {
	boosts   BoostStore
	listings ListingStore
	reach    ReachCounter
	events   Publisher
	config   Config
}

// NewService creates a new boost service
func NewService(boosts BoostStore, listings ListingStore, reach ReachCounter, events Publisher, config Config) *Service {
	if config.BasePrice <= 0 {
		config.BasePrice = 10
	}
	if config.VisibilityCoefficient <= 0 {
		config.VisibilityCoefficient = 0.3
	}
	if config.PopularityDelta <= 0 {
		config.PopularityDelta = 10
	}
	return &Service{
		boosts:   boosts,
		listings: listings,
		reach:    reach,
		events:   events,
		config:   config,
	}
}

// Price computes the boost price from duration, radius and listing price:
// base × (hours/24) × (radius/5) × min(listingPrice/100, 5), rounded to the
// nearest currency unit.
func (s *Service) Price(durationHours, radiusKm, listingPrice float64) float64 {
	priceFactor := math.Min(listingPrice/100, 5)
	return math.Round(s.config.BasePrice * (durationHours / 24) * (radiusKm / 5) * priceFactor)
}

// EstimateReach predicts how many distinct actors a boost zone exposes: the
// actors within the true radius scaled by the visibility coefficient.
func (s *Service) EstimateReach(lat, lng, radiusKm float64) (int, error) {
	count, err := s.reach.CountWithin(lat, lng, radiusKm)
	if err != nil {
		return 0, fault.Wrap(fault.Dependency, "reach estimation failed", err)
	}
	return int(math.Round(float64(count) * s.config.VisibilityCoefficient)), nil
}

// CreateRequest describes a geo-boost purchase
type CreateRequest struct {
	ListingID     string
	OwnerID       string
	DurationHours float64
	RadiusKm      float64
	TargetCity    string
	BudgetAmount  float64
}

// Create prices the boost, checks the declared budget, estimates reach and
// persists a pending record. The listing's ranking is untouched until a
// payment confirmation activates the boost: unpaid boosts must not affect
// ranking.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*boostDomain.Boost, error) {
	if req.ListingID == "" {
		return nil, fault.New(fault.Validation, "missing product id")
	}
	if req.DurationHours <= 0 {
		req.DurationHours = 24
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = 5
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	listing, err := s.listings.GetListing(storeCtx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != "" && listing.OwnerID != req.OwnerID {
		return nil, fault.New(fault.NotFound, "listing does not belong to requester")
	}
	if listing.Position == nil {
		return nil, fault.New(fault.Validation, "listing has no position to target")
	}

	price := s.Price(req.DurationHours, req.RadiusKm, listing.Price)
	if req.BudgetAmount > 0 && req.BudgetAmount < price {
		return nil, fault.New(fault.Integrity, "budget below computed boost price").WithDetails(map[string]interface{}{
			"required": price,
			"provided": req.BudgetAmount,
		})
	}

	reach, err := s.EstimateReach(listing.Position.Latitude, listing.Position.Longitude, req.RadiusKm)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := boostDomain.Boost{
		ID:             uuid.New().String(),
		ListingID:      listing.ID,
		OwnerID:        listing.OwnerID,
		Amount:         price,
		OriginalAmount: price,
		DurationHours:  req.DurationHours,
		RadiusKm:       req.RadiusKm,
		TargetCity:     req.TargetCity,
		Status:         boostDomain.StatusPending,
		EstimatedReach: reach,
		StartTime:      now,
		EndTime:        now.Add(time.Duration(req.DurationHours * float64(time.Hour))),
	}

	if err := s.boosts.SaveBoost(storeCtx, b); err != nil {
		return nil, fault.Wrap(fault.Dependency, "boost write failed", err)
	}

	s.publishEvent("created", b)
	return &b, nil
}

// HandlePaymentConfirmation applies an external payment result to a pending
// boost. Only a paid confirmation activates the boost, and only activation
// elevates the listing's boosted flag and popularity.
func (s *Service) HandlePaymentConfirmation(ctx context.Context, conf boostDomain.PaymentConfirmation) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	b, err := s.boosts.GetBoost(storeCtx, conf.BoostID)
	if err != nil {
		return err
	}
	if b.Status != boostDomain.StatusPending {
		return fault.Newf(fault.Integrity, "boost %s is already %s", b.ID, b.Status)
	}

	if !conf.Paid {
		if err := s.boosts.SetStatus(storeCtx, b.ID, boostDomain.StatusFailed); err != nil {
			return err
		}
		s.publishEvent("failed", *b)
		return nil
	}

	if err := s.boosts.SetStatus(storeCtx, b.ID, boostDomain.StatusActive); err != nil {
		return err
	}
	if err := s.listings.MarkBoosted(storeCtx, b.ListingID, b.EndTime, s.config.PopularityDelta); err != nil {
		return fmt.Errorf("boost %s activated but listing update failed: %w", b.ID, err)
	}

	s.publishEvent("activated", *b)
	return nil
}

func (s *Service) publishEvent(kind string, b boostDomain.Boost) {
	if s.events == nil || s.config.EventsTopic == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event": kind,
		"boost": b,
	})
	if err != nil {
		log.Printf("boost event marshal failed: %v", err)
		return
	}
	if err := s.events.Publish(s.config.EventsTopic+"."+kind, payload); err != nil {
		log.Printf("boost event publish failed: %v", err)
	}
}
