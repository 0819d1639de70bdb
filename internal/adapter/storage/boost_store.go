// internal/adapter/storage/boost_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/boost"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
)

// BoostStore implements storage for geo boosts
type BoostStore struct {
	db *pgxpool.Pool
}

// NewBoostStore creates a new boost store
func NewBoostStore(db *pgxpool.Pool) *BoostStore {
	return &BoostStore{
		db: db,
	}
}

// SaveBoost persists a boost record
func (s *BoostStore) SaveBoost(ctx context.Context, b boost.Boost) error {
	query := `
		INSERT INTO boosts (
			id, listing_id, owner_id, amount, original_amount,
			duration_hours, radius_km, target_city, status,
			estimated_reach, start_time, end_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var city *string
	if b.TargetCity != "" {
		city = &b.TargetCity
	}

	_, err := s.db.Exec(ctx, query,
		b.ID, b.ListingID, b.OwnerID, b.Amount, b.OriginalAmount,
		b.DurationHours, b.RadiusKm, city, string(b.Status),
		b.EstimatedReach, b.StartTime, b.EndTime,
	)
	if err != nil {
		return fmt.Errorf("error saving boost: %w", err)
	}

	return nil
}

// GetBoost retrieves a boost by ID
func (s *BoostStore) GetBoost(ctx context.Context, id string) (*boost.Boost, error) {
	query := `
		SELECT id, listing_id, owner_id, amount, original_amount,
		       duration_hours, radius_km, target_city, status,
		       estimated_reach, start_time, end_time
		FROM boosts
		WHERE id = $1
	`

	var b boost.Boost
	var city *string
	var status string

	err := s.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.ListingID, &b.OwnerID, &b.Amount, &b.OriginalAmount,
		&b.DurationHours, &b.RadiusKm, &city, &status,
		&b.EstimatedReach, &b.StartTime, &b.EndTime,
	)
	if err != nil {
		return nil, fault.Wrap(fault.NotFound, fmt.Sprintf("boost %s not found", id), err)
	}

	if city != nil {
		b.TargetCity = *city
	}
	b.Status = boost.Status(status)

	return &b, nil
}

// SetStatus transitions a boost to a new status
func (s *BoostStore) SetStatus(ctx context.Context, id string, status boost.Status) error {
	tag, err := s.db.Exec(ctx, "UPDATE boosts SET status = $2 WHERE id = $1", id, string(status))
	if err != nil {
		return fmt.Errorf("error updating boost status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Newf(fault.NotFound, "boost %s not found", id)
	}

	return nil
}
