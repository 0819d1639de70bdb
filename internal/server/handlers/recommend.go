// internal/server/handlers/recommend.go

package handlers

import (
	"net/http"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/cache"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/config"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/recommend"
)

// RecommendHandler handles personalized recommendation HTTP requests
type RecommendHandler struct {
	service *recommend.Service
	cache   cache.ResultCache
	ttl     config.CacheConfig
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(service *recommend.Service, c cache.ResultCache, ttl config.CacheConfig) *RecommendHandler {
	return &RecommendHandler{
		service: service,
		cache:   c,
		ttl:     ttl,
	}
}

type recommendationsRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Limit     int     `json:"limit"`
}

// PersonalizedRecommendations blends the four recommendation partitions for
// the caller.
func (h *RecommendHandler) PersonalizedRecommendations(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req recommendationsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	key := cache.Key("personalized-recommendations", map[string]interface{}{
		"user": uid, "lat": req.Latitude, "lng": req.Longitude, "limit": req.Limit,
	})
	if data, ok := h.cache.Get(key); ok {
		writeCached(w, data)
		return
	}

	result, err := h.service.Compose(r.Context(), uid, req.Latitude, req.Longitude, req.Limit)
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondCaching(w, h.cache, key, h.ttl.RecommendationsTTL, map[string]interface{}{
		"success":               true,
		"user_preferences":      result.UserPreferences,
		"recommendations":       result.Recommendations,
		"personalization_score": result.PersonalizationScore,
	})
}
