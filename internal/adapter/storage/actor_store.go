// internal/adapter/storage/actor_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// ActorStore implements storage for sellers and buyers
type ActorStore struct {
	db *pgxpool.Pool
}

// NewActorStore creates a new actor store
func NewActorStore(db *pgxpool.Pool) *ActorStore {
	return &ActorStore{
		db: db,
	}
}

const actorColumns = `
	id, name, role, rating, verified, category,
	last_latitude, last_longitude, last_position_at
`

// FindInBox returns candidate actors inside the bounding box matching the
// query. Exact distance filtering is the caller's responsibility.
func (s *ActorStore) FindInBox(ctx context.Context, box geo.BoundingBox, q actor.Query) ([]actor.Actor, error) {
	cond := &conditions{}
	cond.boundingBox("last_latitude", "last_longitude", box)

	if q.Role != "" {
		cond.add("role = %s", string(q.Role))
	}
	if q.MinRating > 0 {
		cond.add("rating >= %s", q.MinRating)
	}
	if q.Category != "" {
		cond.add("category = %s", q.Category)
	}
	if q.OnlyVerified {
		cond.add("verified = TRUE")
	}
	if q.MinOrders > 0 {
		cond.add("id IN (SELECT buyer_id FROM orders GROUP BY buyer_id HAVING COUNT(*) >= %s)", q.MinOrders)
	}

	query := "SELECT " + actorColumns + " FROM actors" + cond.where()

	rows, err := s.db.Query(ctx, query, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying actors: %w", err)
	}
	defer rows.Close()

	var actors []actor.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actors: %w", err)
	}

	return actors, nil
}

// GetActor retrieves an actor by ID
func (s *ActorStore) GetActor(ctx context.Context, id string) (*actor.Actor, error) {
	query := "SELECT " + actorColumns + " FROM actors WHERE id = $1"

	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("error querying actor: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error querying actor: %w", err)
		}
		return nil, fault.Newf(fault.NotFound, "actor %s not found", id)
	}

	a, err := scanActor(rows)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdatePosition writes the live position and appends to the history log in
// one transaction. The history insert is idempotent on (user_id, recorded_at)
// so a replayed write stays an at-most-once append.
func (s *ActorStore) UpdatePosition(ctx context.Context, rec actor.PositionRecord) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE actors
		SET last_latitude = $2, last_longitude = $3, last_position_at = $4
		WHERE id = $1
	`, rec.UserID, rec.Latitude, rec.Longitude, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("error updating live position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Newf(fault.NotFound, "actor %s not found", rec.UserID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO position_history (user_id, latitude, longitude, accuracy_m, speed_kmh, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, recorded_at) DO NOTHING
	`, rec.UserID, rec.Latitude, rec.Longitude, rec.AccuracyM, rec.SpeedKmh, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("error appending position history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing position update: %w", err)
	}

	return nil
}

// AllPositions streams every actor with a known position, used to warm the
// live index at process start.
func (s *ActorStore) AllPositions(ctx context.Context) ([]actor.Actor, error) {
	query := "SELECT " + actorColumns + " FROM actors WHERE last_latitude IS NOT NULL AND last_longitude IS NOT NULL"

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying positions: %w", err)
	}
	defer rows.Close()

	var actors []actor.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return actors, nil
}

func scanActor(rows pgx.Rows) (actor.Actor, error) {
	var a actor.Actor
	var role string
	var category *string
	var lat, lng *float64
	var at *time.Time

	if err := rows.Scan(
		&a.ID, &a.Name, &role, &a.Rating, &a.Verified, &category,
		&lat, &lng, &at,
	); err != nil {
		return actor.Actor{}, fmt.Errorf("error scanning actor: %w", err)
	}

	a.Role = actor.Role(role)
	if category != nil {
		a.Category = *category
	}
	if lat != nil && lng != nil {
		a.Position = &geo.Position{
			Latitude:  *lat,
			Longitude: *lng,
		}
		if at != nil {
			a.Position.RecordedAt = *at
		}
	}

	return a, nil
}
