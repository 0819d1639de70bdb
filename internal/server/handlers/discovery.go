// internal/server/handlers/discovery.go

package handlers

import (
	"net/http"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/cache"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/config"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/catalog"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/discovery"
)

// DiscoveryHandler handles proximity search HTTP requests
type DiscoveryHandler struct {
	service *discovery.Service
	cache   cache.ResultCache
	ttl     config.CacheConfig
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(service *discovery.Service, c cache.ResultCache, ttl config.CacheConfig) *DiscoveryHandler {
	return &DiscoveryHandler{
		service: service,
		cache:   c,
		ttl:     ttl,
	}
}

type nearbyProductsRequest struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	RadiusKm     float64  `json:"radius_km"`
	Limit        int      `json:"limit"`
	Page         int      `json:"page"`
	Category     string   `json:"category"`
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	Condition    string   `json:"condition"`
	SortBy       string   `json:"sort_by"`
	MinRating    float64  `json:"min_rating"`
	OnlyFeatured bool     `json:"only_featured"`
	OnlyBoosted  bool     `json:"only_boosted"`
}

// NearbyProducts returns the ranked, paginated, enriched listings around a
// point.
func (h *DiscoveryHandler) NearbyProducts(w http.ResponseWriter, r *http.Request) {
	var req nearbyProductsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = 5
	}

	sortKey, ok := catalog.ParseSortKey(req.SortBy)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "unknown sort key", nil)
		return
	}

	key := cache.Key("nearby-products", map[string]interface{}{
		"lat": req.Latitude, "lng": req.Longitude, "radius": req.RadiusKm,
		"limit": req.Limit, "page": req.Page,
		"category": req.Category, "min_price": req.MinPrice, "max_price": req.MaxPrice,
		"condition": req.Condition, "sort": string(sortKey), "min_rating": req.MinRating,
		"featured": req.OnlyFeatured, "boosted": req.OnlyBoosted,
	})
	if data, ok := h.cache.Get(key); ok {
		writeCached(w, data)
		return
	}

	result, err := h.service.NearbyProducts(r.Context(), discovery.ProductQuery{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusKm:  req.RadiusKm,
		Filter: catalog.Filter{
			Category:     req.Category,
			MinPrice:     req.MinPrice,
			MaxPrice:     req.MaxPrice,
			Condition:    req.Condition,
			MinRating:    req.MinRating,
			OnlyFeatured: req.OnlyFeatured,
			OnlyBoosted:  req.OnlyBoosted,
		},
		Sort: sortKey,
		Page: catalog.Page{Page: req.Page, Limit: req.Limit},
	})
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondCaching(w, h.cache, key, h.ttl.NearbyProductsTTL, map[string]interface{}{
		"success":         true,
		"count":           len(result.Products),
		"page":            result.Page,
		"limit":           result.Limit,
		"total_in_radius": result.TotalInRadius,
		"products":        result.Products,
	})
}

type radiusRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	Limit     int     `json:"limit"`
}

// NewProductsNearby returns listings created in the last 24 hours around a
// point, newest first.
func (h *DiscoveryHandler) NewProductsNearby(w http.ResponseWriter, r *http.Request) {
	var req radiusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = 5
	}
	if req.Limit <= 0 {
		req.Limit = 15
	}

	key := cache.Key("new-products-nearby", map[string]interface{}{
		"lat": req.Latitude, "lng": req.Longitude, "radius": req.RadiusKm, "limit": req.Limit,
	})
	if data, ok := h.cache.Get(key); ok {
		writeCached(w, data)
		return
	}

	products, err := h.service.NewProductsNearby(r.Context(), req.Latitude, req.Longitude, req.RadiusKm, req.Limit)
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondCaching(w, h.cache, key, h.ttl.NewProductsTTL, map[string]interface{}{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

type nearbySellersRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusKm     float64 `json:"radius_km"`
	MinRating    float64 `json:"min_rating"`
	Category     string  `json:"category"`
	OnlyVerified bool    `json:"only_verified"`
}

// NearbySellers returns sellers around a point, closest first.
func (h *DiscoveryHandler) NearbySellers(w http.ResponseWriter, r *http.Request) {
	var req nearbySellersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = 10
	}

	key := cache.Key("nearby-sellers", map[string]interface{}{
		"lat": req.Latitude, "lng": req.Longitude, "radius": req.RadiusKm,
		"min_rating": req.MinRating, "category": req.Category, "verified": req.OnlyVerified,
	})
	if data, ok := h.cache.Get(key); ok {
		writeCached(w, data)
		return
	}

	sellers, err := h.service.NearbySellers(r.Context(), req.Latitude, req.Longitude, req.RadiusKm, actor.Query{
		MinRating:    req.MinRating,
		Category:     req.Category,
		OnlyVerified: req.OnlyVerified,
	})
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondCaching(w, h.cache, key, h.ttl.NearbySellersTTL, map[string]interface{}{
		"success": true,
		"count":   len(sellers),
		"sellers": sellers,
	})
}

type nearbyBuyersRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	MinOrders int     `json:"min_orders"`
}

// NearbyBuyers returns buyers around a seller with aggregate analytics.
func (h *DiscoveryHandler) NearbyBuyers(w http.ResponseWriter, r *http.Request) {
	sellerID := userID(r)
	if sellerID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req nearbyBuyersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = 5
	}

	key := cache.Key("nearby-buyers", map[string]interface{}{
		"lat": req.Latitude, "lng": req.Longitude, "radius": req.RadiusKm, "min_orders": req.MinOrders,
	})
	if data, ok := h.cache.Get(key); ok {
		writeCached(w, data)
		return
	}

	buyers, analytics, err := h.service.NearbyBuyers(r.Context(), req.Latitude, req.Longitude, req.RadiusKm, req.MinOrders)
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondCaching(w, h.cache, key, h.ttl.NearbyBuyersTTL, map[string]interface{}{
		"success":   true,
		"count":     len(buyers),
		"buyers":    buyers,
		"analytics": analytics,
	})
}

type areaStatsRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
}

// AreaStats returns aggregate marketplace statistics for a zone.
func (h *DiscoveryHandler) AreaStats(w http.ResponseWriter, r *http.Request) {
	var req areaStatsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = 2
	}

	key := cache.Key("area-stats", map[string]interface{}{
		"lat": req.Latitude, "lng": req.Longitude, "radius": req.RadiusKm,
	})
	if data, ok := h.cache.Get(key); ok {
		writeCached(w, data)
		return
	}

	stats, err := h.service.GetAreaStats(r.Context(), req.Latitude, req.Longitude, req.RadiusKm)
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondCaching(w, h.cache, key, h.ttl.AreaStatsTTL, map[string]interface{}{
		"success": true,
		"stats": map[string]interface{}{
			"products":        stats.Products,
			"sellers":         stats.Sellers,
			"recent_activity": stats.RecentActivity,
		},
		"popular_categories": stats.PopularCategories,
		"market_density":     stats.MarketDensity,
		"recommendations":    stats.Recommendations,
	})
}
