// internal/domain/geo/geo.go

package geo

import (
	"fmt"
	"math"
	"time"
)

// EarthRadiusKm is the mean Earth radius used for all spherical math.
const EarthRadiusKm = 6371.0

// Position represents a geographic point with optional metadata
type Position struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Valid reports whether the coordinates are in range. It never returns an
// error; callers translate a false result into a client error.
func (p Position) Valid() bool {
	return ValidCoordinates(p.Latitude, p.Longitude)
}

// ValidCoordinates checks that lat is in [-90,90] and lng in [-180,180].
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// BoundingBox is an axis-aligned lat/lng rectangle. It is a cheap superset
// filter for a radius around a center point; an exact distance check must
// always follow.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether a point falls inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// NewBoundingBox computes the box covering a circle of radiusKm around the
// center. Near the poles cos(lat) approaches zero and the longitude delta
// blows up; the span is clamped to the full ±180° instead of going infinite.
func NewBoundingBox(lat, lng, radiusKm float64) (BoundingBox, error) {
	if !ValidCoordinates(lat, lng) {
		return BoundingBox{}, fmt.Errorf("invalid center coordinates (%f, %f)", lat, lng)
	}
	if radiusKm <= 0 {
		return BoundingBox{}, fmt.Errorf("radius must be positive, got %f", radiusKm)
	}

	latDelta := (radiusKm / EarthRadiusKm) * (180 / math.Pi)

	lngDelta := 180.0
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 1e-6 {
		lngDelta = (radiusKm / (EarthRadiusKm * cosLat)) * (180 / math.Pi)
		if lngDelta > 180 {
			lngDelta = 180
		}
	}

	return BoundingBox{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
		MinLng: math.Max(lng-lngDelta, -180),
		MaxLng: math.Min(lng+lngDelta, 180),
	}, nil
}

// Haversine returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	lambda1 := lng1 * math.Pi / 180
	lambda2 := lng2 * math.Pi / 180

	arg := math.Sin(phi1)*math.Sin(phi2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Cos(lambda2-lambda1)

	// Floating point error can push the argument slightly outside [-1,1],
	// which would make Acos return NaN for near-zero distances.
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}

	return EarthRadiusKm * math.Acos(arg)
}

// Distance is Haversine over Position values.
func Distance(a, b Position) float64 {
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}
