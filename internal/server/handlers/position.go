// internal/server/handlers/position.go

package handlers

import (
	"net/http"
	"time"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/actor"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/position"
)

// PositionHandler handles position ingestion HTTP requests
type PositionHandler struct {
	service *position.Service
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(service *position.Service) *PositionHandler {
	return &PositionHandler{
		service: service,
	}
}

type updatePositionRequest struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  float64    `json:"accuracy"`
	Speed     float64    `json:"speed"`
	Timestamp *time.Time `json:"timestamp"`
}

// UpdatePosition persists the caller's current position.
func (h *PositionHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req updatePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	rec := actor.PositionRecord{
		UserID:    uid,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		AccuracyM: req.Accuracy,
		SpeedKmh:  req.Speed,
	}
	if req.Timestamp != nil {
		rec.RecordedAt = *req.Timestamp
	}

	recordedAt, err := h.service.UpdatePosition(r.Context(), rec)
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": recordedAt,
	})
}

type preciseLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
	Activity  string  `json:"activity"`
}

// PreciseLocation processes a high-accuracy position report.
func (h *PositionHandler) PreciseLocation(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req preciseLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	result, err := h.service.ProcessPreciseLocation(r.Context(), position.PreciseRequest{
		UserID:    uid,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		AccuracyM: req.Accuracy,
		AltitudeM: req.Altitude,
		Heading:   req.Heading,
		SpeedKmh:  req.Speed,
		Activity:  req.Activity,
	})
	if err != nil {
		respondWithFault(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"precision":           result.Precision,
		"movement_context":    result.MovementContext,
		"context":             result.Place,
		"triggered_geofences": result.TriggeredGeofences,
		"suggestions":         result.Suggestions,
	})
}
