// internal/adapter/storage/route_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/navigation"
)

// RouteStore persists navigation-history records
type RouteStore struct {
	db *pgxpool.Pool
}

// NewRouteStore creates a new route store
func NewRouteStore(db *pgxpool.Pool) *RouteStore {
	return &RouteStore{
		db: db,
	}
}

// SaveRoute appends a navigation-history record
func (s *RouteStore) SaveRoute(ctx context.Context, r navigation.Route) error {
	stepsJSON, err := json.Marshal(r.Steps)
	if err != nil {
		return fmt.Errorf("error marshaling route steps: %w", err)
	}

	var userID *string
	if r.UserID != "" {
		userID = &r.UserID
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO navigation_history (
			id, user_id, start_latitude, start_longitude,
			end_latitude, end_longitude, mode,
			distance_km, estimated_minutes, steps, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		r.ID, userID, r.StartLatitude, r.StartLongitude,
		r.EndLatitude, r.EndLongitude, string(r.Mode),
		r.DistanceKm, r.EstimatedMinutes, stepsJSON, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving route: %w", err)
	}

	return nil
}
