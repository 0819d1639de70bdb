// internal/server/handlers/navigation.go

package handlers

import (
	"net/http"

	nav "github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/navigation"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/navigation"
)

// NavigationHandler handles navigation estimate HTTP requests
type NavigationHandler struct {
	service *navigation.Service
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(service *navigation.Service) *NavigationHandler {
	return &NavigationHandler{
		service: service,
	}
}

type navigationRequest struct {
	StartLatitude  float64 `json:"start_latitude"`
	StartLongitude float64 `json:"start_longitude"`
	EndLatitude    float64 `json:"end_latitude"`
	EndLongitude   float64 `json:"end_longitude"`
	ProductID      string  `json:"product_id"`
	SellerID       string  `json:"seller_id"`
	Mode           string  `json:"mode"`
}

// Navigate returns a straight-line route estimate toward a point, listing or
// seller.
func (h *NavigationHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	est, err := h.service.Estimate(r.Context(), navigation.Request{
		UserID:         userID(r),
		StartLatitude:  req.StartLatitude,
		StartLongitude: req.StartLongitude,
		EndLatitude:    req.EndLatitude,
		EndLongitude:   req.EndLongitude,
		Mode:           nav.Mode(req.Mode),
		ProductID:      req.ProductID,
		SellerID:       req.SellerID,
	})
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"route_id":       est.Route.ID,
		"distance":       est.Route.DistanceKm,
		"estimated_time": est.Route.EstimatedMinutes,
		"navigation": map[string]interface{}{
			"mode":  est.Route.Mode,
			"steps": est.Route.Steps,
		},
		"destination": est.Destination,
		"safety_tips": est.SafetyTips,
	})
}
