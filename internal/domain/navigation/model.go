// internal/domain/navigation/model.go

package navigation

import "time"

// Mode is a travel mode with a fixed average speed
type Mode string

const (
	ModeWalking Mode = "walking"
	ModeDriving Mode = "driving"
	ModeCycling Mode = "cycling"
)

// SpeedKmh returns the fixed average speed for the mode. Unknown modes fall
// back to walking.
func (m Mode) SpeedKmh() float64 {
	switch m {
	case ModeDriving:
		return 40
	case ModeCycling:
		return 15
	default:
		return 5
	}
}

// Valid reports whether m is a known travel mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeWalking, ModeDriving, ModeCycling:
		return true
	}
	return false
}

// Step is one canned instruction of an estimated route. This is explicitly
// not a routing graph; the estimate is straight-line only.
type Step struct {
	Instruction string  `json:"instruction"`
	DistanceKm  float64 `json:"distance_km"`
}

// Route is a persisted navigation estimate
type Route struct {
	ID               string    `json:"route_id"`
	UserID           string    `json:"user_id,omitempty"`
	StartLatitude    float64   `json:"start_latitude"`
	StartLongitude   float64   `json:"start_longitude"`
	EndLatitude      float64   `json:"end_latitude"`
	EndLongitude     float64   `json:"end_longitude"`
	Mode             Mode      `json:"mode"`
	DistanceKm       float64   `json:"distance_km"`
	EstimatedMinutes float64   `json:"estimated_minutes"`
	Steps            []Step    `json:"steps"`
	CreatedAt        time.Time `json:"created_at"`
}
