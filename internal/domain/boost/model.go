// internal/domain/boost/model.go

package boost

import "time"

// Status is the lifecycle state of a boost. A boost is created pending and
// only an external payment confirmation moves it to active or failed.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusFailed  Status = "failed"
)

// Boost is a paid, time-and-radius-bounded promotion of a listing
type Boost struct {
	ID             string    `json:"id"`
	ListingID      string    `json:"listing_id"`
	OwnerID        string    `json:"owner_id"`
	Amount         float64   `json:"amount"`
	OriginalAmount float64   `json:"original_amount"`
	DurationHours  float64   `json:"duration_hours"`
	RadiusKm       float64   `json:"radius_km"`
	TargetCity     string    `json:"target_city,omitempty"`
	Status         Status    `json:"status"`
	EstimatedReach int       `json:"estimated_reach"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

// PaymentConfirmation is the event payload a payment gateway publishes once
// a boost charge settles.
type PaymentConfirmation struct {
	BoostID string `json:"boost_id"`
	Paid    bool   `json:"paid"`
}
