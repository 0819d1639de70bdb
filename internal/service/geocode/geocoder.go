// internal/service/geocode/geocoder.go

// Package geocode attaches human-readable place context to coordinates.
package geocode

import (
	"context"
	"fmt"
	"strconv"

	"github.com/muesli/gominatim"
)

// Place is the reverse-geocoded context of a coordinate pair
type Place struct {
	DisplayName string `json:"display_name"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Geocoder resolves coordinates to a place description
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error)
}

// Static is the default geocoder used when no Nominatim server is
// configured. It echoes the coordinates instead of calling out.
type Static struct{}

// ReverseGeocode returns a formatted coordinate label.
func (Static) ReverseGeocode(_ context.Context, lat, lng float64) (*Place, error) {
	return &Place{
		DisplayName: fmt.Sprintf("Lat: %f, Lng: %f", lat, lng),
	}, nil
}

// Nominatim reverse-geocodes against a Nominatim server.
type Nominatim struct{}

// NewNominatim configures the shared gominatim client for the given server
// and returns a geocoder using it.
func NewNominatim(server string) (*Nominatim, error) {
	gominatim.SetServer(server)
	return &Nominatim{}, nil
}

// ReverseGeocode resolves the coordinates through Nominatim.
func (n *Nominatim) ReverseGeocode(_ context.Context, lat, lng float64) (*Place, error) {
	query := gominatim.ReverseQuery{
		Lat: strconv.FormatFloat(lat, 'f', -1, 64),
		Lon: strconv.FormatFloat(lng, 'f', -1, 64),
	}

	result, err := query.Get()
	if err != nil {
		return nil, fmt.Errorf("reverse geocode failed: %w", err)
	}

	return &Place{
		DisplayName: result.DisplayName,
		City:        result.Address.City,
		Country:     result.Address.Country,
	}, nil
}
