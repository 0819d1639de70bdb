// internal/adapter/storage/enrichment_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
)

// EnrichmentStore serves the per-result auxiliary fetches of the enrichment
// pipeline. Each method touches a disjoint table, so the pipeline issues
// them concurrently.
type EnrichmentStore struct {
	db *pgxpool.Pool
}

// NewEnrichmentStore creates a new enrichment store
func NewEnrichmentStore(db *pgxpool.Pool) *EnrichmentStore {
	return &EnrichmentStore{
		db: db,
	}
}

// Images returns the image URLs of a listing
func (s *EnrichmentStore) Images(ctx context.Context, listingID string) ([]string, error) {
	return s.stringColumn(ctx,
		"SELECT url FROM listing_images WHERE listing_id = $1 ORDER BY sort_order",
		listingID)
}

// Tags returns the tag names of a listing
func (s *EnrichmentStore) Tags(ctx context.Context, listingID string) ([]string, error) {
	return s.stringColumn(ctx,
		"SELECT t.name FROM tags t JOIN listing_tags lt ON lt.tag_id = t.id WHERE lt.listing_id = $1",
		listingID)
}

// Shop returns the owning-shop summary for a listing owner
func (s *EnrichmentStore) Shop(ctx context.Context, ownerID string) (*catalog.ShopSummary, error) {
	query := `
		SELECT id, name, rating, verified
		FROM shops
		WHERE owner_id = $1
	`

	var sh catalog.ShopSummary
	err := s.db.QueryRow(ctx, query, ownerID).Scan(&sh.ID, &sh.Name, &sh.Rating, &sh.Verified)
	if err != nil {
		return nil, fmt.Errorf("error querying shop: %w", err)
	}

	return &sh, nil
}

// OrderStats returns aggregate order statistics for a buyer
func (s *EnrichmentStore) OrderStats(ctx context.Context, actorID string) (*actor.OrderStats, error) {
	var stats actor.OrderStats

	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE buyer_id = $1
	`, actorID).Scan(&stats.TotalOrders, &stats.TotalSpent)
	if err != nil {
		return nil, fmt.Errorf("error querying order stats: %w", err)
	}

	cats, err := s.stringColumn(ctx, `
		SELECT l.category
		FROM orders o
		JOIN listings l ON l.id = o.listing_id
		WHERE o.buyer_id = $1
		GROUP BY l.category
		ORDER BY COUNT(*) DESC
		LIMIT 3
	`, actorID)
	if err != nil {
		return nil, err
	}
	stats.TopCategories = cats

	return &stats, nil
}

func (s *EnrichmentStore) stringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
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
