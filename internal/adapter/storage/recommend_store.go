// internal/adapter/storage/recommend_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// RecommendStore serves the history and trending queries behind the
// recommendation composer.
type RecommendStore struct {
	db *pgxpool.Pool
}

// NewRecommendStore creates a new recommendation store
func NewRecommendStore(db *pgxpool.Pool) *RecommendStore {
	return &RecommendStore{
		db: db,
	}
}

// ViewedCategories returns the categories of listings a user recently viewed,
// most viewed first.
func (s *RecommendStore) ViewedCategories(ctx context.Context, userID string, limit int) ([]string, error) {
	return s.stringColumn(ctx, `
		SELECT l.category
		FROM listing_views v
		JOIN listings l ON l.id = v.listing_id
		WHERE v.user_id = $1
		GROUP BY l.category
		ORDER BY COUNT(*) DESC
		LIMIT $2
	`, userID, limit)
}

// LikedCategories returns the categories of listings a user liked.
func (s *RecommendStore) LikedCategories(ctx context.Context, userID string, limit int) ([]string, error) {
	return s.stringColumn(ctx, `
		SELECT l.category
		FROM listing_likes lk
		JOIN listings l ON l.id = lk.listing_id
		WHERE lk.user_id = $1
		GROUP BY l.category
		ORDER BY COUNT(*) DESC
		LIMIT $2
	`, userID, limit)
}

// FindByCategories returns recent listings in any of the given categories,
// excluding those owned by the user.
func (s *RecommendStore) FindByCategories(ctx context.Context, userID string, categories []string, limit int) ([]catalog.Listing, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE category = ANY($1)
		AND owner_id <> $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	return s.queryListings(ctx, query, categories, userID, limit)
}

// FindTrendingInBox returns listings created since the cutoff inside the
// bounding box, scored by a weighted combination of views, likes and
// comments. The box is the usual superset pre-filter.
func (s *RecommendStore) FindTrendingInBox(ctx context.Context, box geo.BoundingBox, since time.Time, limit int) ([]catalog.Listing, error) {
	cond := &conditions{}
	cond.boundingBox("latitude", "longitude", box)
	cond.add("created_at >= %s", since)

	query := `
		SELECT ` + listingColumns + `,
		       (SELECT COUNT(*) FROM listing_views v WHERE v.listing_id = listings.id)
		     + 2 * (SELECT COUNT(*) FROM listing_likes lk WHERE lk.listing_id = listings.id)
		     + 3 * (SELECT COUNT(*) FROM listing_comments c WHERE c.listing_id = listings.id) AS trend_score
		FROM listings` + cond.where() + `
		ORDER BY trend_score DESC, created_at DESC
		LIMIT ` + cond.next(limit)

	rows, err := s.db.Query(ctx, query, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying trending listings: %w", err)
	}
	defer rows.Close()

	var listings []catalog.Listing
	for rows.Next() {
		var l catalog.Listing
		var lat, lng *float64
		var trendScore int64

		if err := rows.Scan(
			&l.ID, &l.Title, &l.Description, &l.Price, &l.Category, &l.Condition,
			&l.OwnerID, &l.Rating, &l.PopularityScore, &l.IsFeatured, &l.IsBoosted, &l.BoostEnd,
			&l.CreatedAt, &lat, &lng, &trendScore,
		); err != nil {
			return nil, fmt.Errorf("error scanning trending listing: %w", err)
		}

		if lat != nil && lng != nil {
			l.Position = &geo.Position{Latitude: *lat, Longitude: *lng, RecordedAt: l.CreatedAt}
		}
		l.PopularityScore = float64(trendScore)

		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trending listings: %w", err)
	}

	return listings, nil
}

// FindBySimilarActors returns listings from sellers the user's order history
// overlaps with, excluding sellers the user already bought from.
func (s *RecommendStore) FindBySimilarActors(ctx context.Context, userID string, limit int) ([]catalog.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE owner_id IN (
			SELECT DISTINCT o2.seller_id
			FROM orders o1
			JOIN orders o2 ON o2.buyer_id <> o1.buyer_id
			                AND o2.seller_id <> o1.seller_id
			JOIN orders shared ON shared.buyer_id = o2.buyer_id
			                    AND shared.seller_id = o1.seller_id
			WHERE o1.buyer_id = $1
		)
		ORDER BY popularity_score DESC
		LIMIT $2
	`

	return s.queryListings(ctx, query, userID, limit)
}

func (s *RecommendStore) queryListings(ctx context.Context, query string, args ...interface{}) ([]catalog.Listing, error) {
	rows, err := s.db.Query(ctx, query, args...)
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

func (s *RecommendStore) stringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("error scanning: %w", err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating: %w", err)
	}

	return values, nil
}
