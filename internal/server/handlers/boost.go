// internal/server/handlers/boost.go

package handlers

import (
	"net/http"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/boost"
)

// BoostHandler handles geo-boost HTTP requests
type BoostHandler struct {
	service *boost.Service
}

// NewBoostHandler creates a new boost handler
func NewBoostHandler(service *boost.Service) *BoostHandler {
	return &BoostHandler{
		service: service,
	}
}

type geoBoostRequest struct {
	ProductID      string  `json:"product_id"`
	DurationHours  float64 `json:"duration_hours"`
	TargetRadiusKm float64 `json:"target_radius_km"`
	TargetCity     string  `json:"target_city"`
	BudgetAmount   float64 `json:"budget_amount"`
}

// GeoBoost prices and creates a pending boost for the caller's listing.
func (h *BoostHandler) GeoBoost(w http.ResponseWriter, r *http.Request) {
	ownerID := userID(r)
	if ownerID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req geoBoostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	b, err := h.service.Create(r.Context(), boost.CreateRequest{
		ListingID:     req.ProductID,
		OwnerID:       ownerID,
		DurationHours: req.DurationHours,
		RadiusKm:      req.TargetRadiusKm,
		TargetCity:    req.TargetCity,
		BudgetAmount:  req.BudgetAmount,
	})
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"boost_id": b.ID,
		"payment": map[string]interface{}{
			"amount": b.Amount,
			"status": b.Status,
		},
		"boost_details": map[string]interface{}{
			"product_id":     b.ListingID,
			"duration_hours": b.DurationHours,
			"radius_km":      b.RadiusKm,
			"target_city":    b.TargetCity,
			"start_time":     b.StartTime,
			"end_time":       b.EndTime,
		},
		"performance_metrics": map[string]interface{}{
			"estimated_reach": b.EstimatedReach,
		},
	})
}
