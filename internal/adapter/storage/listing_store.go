// internal/adapter/storage/listing_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// ListingStore implements storage for marketplace listings
type ListingStore struct {
	db *pgxpool.Pool
}

// NewListingStore creates a new listing store
func NewListingStore(db *pgxpool.Pool) *ListingStore {
	return &ListingStore{
		db: db,
	}
}

const listingColumns = `
	id, title, description, price, category, condition,
	owner_id, rating, popularity_score, is_featured, is_boosted, boost_end,
	created_at, latitude, longitude
`

// FindInBox returns candidate listings whose stored position falls inside
// the bounding box, with the conjunctive filters applied. The box is a
// superset; the caller runs the exact distance check.
func (s *ListingStore) FindInBox(ctx context.Context, box geo.BoundingBox, f catalog.Filter) ([]catalog.Listing, error) {
	cond := &conditions{}
	cond.boundingBox("latitude", "longitude", box)

	if f.Category != "" {
		cond.add("category = %s", f.Category)
	}
	if f.MinPrice != nil {
		cond.add("price >= %s", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		cond.add("price <= %s", *f.MaxPrice)
	}
	if f.Condition != "" {
		cond.add("condition = %s", f.Condition)
	}
	if f.MinRating > 0 {
		cond.add("rating >= %s", f.MinRating)
	}
	if f.OnlyFeatured {
		cond.add("is_featured = TRUE")
	}
	if f.OnlyBoosted {
		cond.add("is_boosted = TRUE")
	}
	if !f.CreatedAfter.IsZero() {
		cond.add("created_at >= %s", f.CreatedAfter)
	}

	query := "SELECT " + listingColumns + " FROM listings" + cond.where()

	rows, err := s.db.Query(ctx, query, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying listings: %w", err)
	}
	defer rows.Close()

	var listings []catalog.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, nil
}

// GetListing retrieves a listing by ID
func (s *ListingStore) GetListing(ctx context.Context, id string) (*catalog.Listing, error) {
	query := "SELECT " + listingColumns + " FROM listings WHERE id = $1"

	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("error querying listing: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error querying listing: %w", err)
		}
		return nil, fault.Newf(fault.NotFound, "listing %s not found", id)
	}

	l, err := scanListing(rows)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// MarkBoosted flags a listing as boosted until boostEnd and bumps its
// popularity score. Called only once a boost is confirmed active; pending
// boosts must not affect ranking.
func (s *ListingStore) MarkBoosted(ctx context.Context, listingID string, boostEnd time.Time, popularityDelta float64) error {
	query := `
		UPDATE listings
		SET is_boosted = TRUE,
		    boost_end = $2,
		    popularity_score = popularity_score + $3
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query, listingID, boostEnd, popularityDelta)
	if err != nil {
		return fmt.Errorf("error marking listing boosted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Newf(fault.NotFound, "listing %s not found", listingID)
	}

	return nil
}

// scanListing reads one listing row, reconstructing the optional position.
func scanListing(rows pgx.Rows) (catalog.Listing, error) {
	var l catalog.Listing
	var lat, lng *float64

	if err := rows.Scan(
		&l.ID, &l.Title, &l.Description, &l.Price, &l.Category, &l.Condition,
		&l.OwnerID, &l.Rating, &l.PopularityScore, &l.IsFeatured, &l.IsBoosted, &l.BoostEnd,
		&l.CreatedAt, &lat, &lng,
	); err != nil {
		return catalog.Listing{}, fmt.Errorf("error scanning listing: %w", err)
	}

	if lat != nil && lng != nil {
		l.Position = &geo.Position{
			Latitude:   *lat,
			Longitude:  *lng,
			RecordedAt: l.CreatedAt,
		}
	}

	return l, nil
}
