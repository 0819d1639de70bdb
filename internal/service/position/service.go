// internal/service/position/service.go

// Package position handles position updates, the live in-memory position
// index, and precise-location processing.
package position

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/geocode"
)

// maxUsableAccuracyM is the accuracy bound for precise-location processing.
const maxUsableAccuracyM = 100.0

// PositionStore is the persistence surface for live positions and history
type PositionStore interface {
	UpdatePosition(ctx context.Context, rec actor.PositionRecord) error
	AllPositions(ctx context.Context) ([]actor.Actor, error)
}

// Publisher publishes position events. *nats.Conn satisfies this.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Geofence is a pluggable zone predicate. No real rule set is specified
// yet, so the default registry triggers nothing.
type Geofence interface {
	Name() string
	Triggered(p geo.Position) bool
}

// GeofenceRegistry evaluates registered geofences against a position
type GeofenceRegistry struct {
	mu     sync.RWMutex
	fences []Geofence
}

// NewGeofenceRegistry creates an empty registry
func NewGeofenceRegistry() *GeofenceRegistry {
	return &GeofenceRegistry{}
}

// Register adds a geofence to the registry
func (r *GeofenceRegistry) Register(f Geofence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fences = append(r.fences, f)
}

// Evaluate returns the names of triggered geofences
func (r *GeofenceRegistry) Evaluate(p geo.Position) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	triggered := []string{}
	for _, f := range r.fences {
		if f.Triggered(p) {
			triggered = append(triggered, f.Name())
		}
	}
	return triggered
}

// Config contains configuration for the position service
type Config struct {
	EventsTopic  string
	StoreTimeout time.Duration
}

// Service implements position updates and precise-location processing
type Service struct {
	store     PositionStore
	index     *LiveIndex
	events    Publisher
	geocoder  geocode.Geocoder
	geofences *GeofenceRegistry
	config    Config
}

// NewService creates a new position service
func NewService(
	store PositionStore,
	index *LiveIndex,
	events Publisher,
	geocoder geocode.Geocoder,
	geofences *GeofenceRegistry,
	config Config,
) *Service {
	return &Service{
		store:     store,
		index:     index,
		events:    events,
		geocoder:  geocoder,
		geofences: geofences,
		config:    config,
	}
}

// WarmIndex loads every stored position into the live index. Called once at
// process start.
func (s *Service) WarmIndex(ctx context.Context) error {
	actors, err := s.store.AllPositions(ctx)
	if err != nil {
		return fault.Wrap(fault.Dependency, "warming live index failed", err)
	}

	for _, a := range actors {
		if a.Position != nil {
			s.index.Upsert(a.ID, a.Position.Latitude, a.Position.Longitude)
		}
	}

	log.Printf("live position index warmed with %d actors", s.index.Size())
	return nil
}

// UpdatePosition validates and persists a position update, refreshes the
// live index, and publishes a position event. The live write and the
// history append happen in one store transaction.
func (s *Service) UpdatePosition(ctx context.Context, rec actor.PositionRecord) (time.Time, error) {
	if !geo.ValidCoordinates(rec.Latitude, rec.Longitude) {
		return time.Time{}, fault.New(fault.Validation, "invalid coordinates")
	}
	if rec.UserID == "" {
		return time.Time{}, fault.New(fault.Validation, "missing user id")
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	if err := s.store.UpdatePosition(storeCtx, rec); err != nil {
		if fault.IsKind(err, fault.NotFound) {
			return time.Time{}, err
		}
		return time.Time{}, fault.Wrap(fault.Dependency, "position write failed", err)
	}

	s.index.Upsert(rec.UserID, rec.Latitude, rec.Longitude)
	s.publishEvent(rec)

	return rec.RecordedAt, nil
}

// publishEvent sends the position update on the events topic. Delivery is
// best effort; a publish failure never fails the request.
func (s *Service) publishEvent(rec actor.PositionRecord) {
	if s.events == nil || s.config.EventsTopic == "" {
		return
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("position event marshal failed: %v", err)
		return
	}
	if err := s.events.Publish(s.config.EventsTopic, payload); err != nil {
		log.Printf("position event publish failed: %v", err)
	}
}

// PreciseRequest is a high-accuracy position report
type PreciseRequest struct {
	UserID    string
	Latitude  float64
	Longitude float64
	AccuracyM float64
	AltitudeM float64
	Heading   float64
	SpeedKmh  float64
	Activity  string
}

// PreciseResult classifies a precise-location report
type PreciseResult struct {
	Precision          string         `json:"precision"`
	MovementContext    string         `json:"movement_context"`
	Place              *geocode.Place `json:"context,omitempty"`
	TriggeredGeofences []string       `json:"triggered_geofences"`
	Suggestions        []string       `json:"suggestions"`
}

// ProcessPreciseLocation validates a precise report, persists it, and
// derives precision class, movement context, geofence triggers and
// suggestions. Reports with accuracy worse than 100m are rejected.
func (s *Service) ProcessPreciseLocation(ctx context.Context, req PreciseRequest) (*PreciseResult, error) {
	if !geo.ValidCoordinates(req.Latitude, req.Longitude) {
		return nil, fault.New(fault.Validation, "invalid coordinates")
	}
	if req.AccuracyM > maxUsableAccuracyM {
		return nil, fault.New(fault.Validation, "location accuracy too low").WithDetails(map[string]interface{}{
			"required_accuracy": "≤ 100m",
			"provided_accuracy": req.AccuracyM,
		})
	}

	rec := actor.PositionRecord{
		UserID:     req.UserID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		AccuracyM:  req.AccuracyM,
		SpeedKmh:   req.SpeedKmh,
		RecordedAt: time.Now().UTC(),
	}
	if _, err := s.UpdatePosition(ctx, rec); err != nil {
		return nil, err
	}

	result := &PreciseResult{
		Precision:          classifyPrecision(req.AccuracyM),
		MovementContext:    classifyMovement(req.SpeedKmh, req.Activity),
		TriggeredGeofences: s.geofences.Evaluate(geo.Position{Latitude: req.Latitude, Longitude: req.Longitude}),
	}

	if s.geocoder != nil {
		place, err := s.geocoder.ReverseGeocode(ctx, req.Latitude, req.Longitude)
		if err != nil {
			log.Printf("reverse geocode degraded: %v", err)
		} else {
			result.Place = place
		}
	}

	result.Suggestions = suggestionsFor(result.MovementContext)
	return result, nil
}

func classifyPrecision(accuracyM float64) string {
	switch {
	case accuracyM <= 10:
		return "high"
	case accuracyM <= 50:
		return "medium"
	default:
		return "low"
	}
}

func classifyMovement(speedKmh float64, activity string) string {
	if activity != "" {
		return activity
	}
	switch {
	case speedKmh < 1:
		return "stationary"
	case speedKmh < 7:
		return "walking"
	case speedKmh < 25:
		return "cycling"
	default:
		return "driving"
	}
}

func suggestionsFor(movement string) []string {
	switch movement {
	case "stationary":
		return []string{"Browse products available around you"}
	case "walking", "cycling":
		return []string{"Sellers along your path can be notified of your interest"}
	default:
		return []string{"Enable pickup points near your destination"}
	}
}
