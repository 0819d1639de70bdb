package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(-90, -180))
	assert.True(t, ValidCoordinates(90, 180))
	assert.True(t, ValidCoordinates(48.8566, 2.3522))

	assert.False(t, ValidCoordinates(90.0001, 0))
	assert.False(t, ValidCoordinates(-91, 0))
	assert.False(t, ValidCoordinates(0, 180.5))
	assert.False(t, ValidCoordinates(0, -200))
}

func TestHaversineKnownDistances(t *testing.T) {
	// Paris -> London is roughly 344km
	d := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 5)

	// Same point must be exactly zero, not NaN (acos clamp)
	d = Haversine(40.7128, -74.0060, 40.7128, -74.0060)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, 0, d, 1e-9)

	// Antipodal points: half the Earth's circumference
	d = Haversine(0, 0, 0, 180)
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1)
}

func TestHaversineNearZeroNoNaN(t *testing.T) {
	// Points a few meters apart exercise the arg > 1 clamp
	d := Haversine(52.5200, 13.4050, 52.5200001, 13.4050001)
	assert.False(t, math.IsNaN(d))
	assert.GreaterOrEqual(t, d, 0.0)
	assert.Less(t, d, 0.01)
}

func TestNewBoundingBoxContainsCircle(t *testing.T) {
	box, err := NewBoundingBox(40.0, -74.0, 10)
	require.NoError(t, err)

	// Every point within the radius must be inside the box
	for _, p := range []struct{ lat, lng float64 }{
		{40.0, -74.0},
		{40.05, -74.05},
		{39.95, -73.95},
	} {
		if Haversine(40.0, -74.0, p.lat, p.lng) <= 10 {
			assert.True(t, box.Contains(p.lat, p.lng), "point (%f,%f) within radius must be in box", p.lat, p.lng)
		}
	}

	// The box is a superset: roughly 10km corresponds to ~0.09 degrees of latitude
	assert.InDelta(t, 0.09, box.MaxLat-40.0, 0.01)
}

func TestNewBoundingBoxRejectsBadInput(t *testing.T) {
	_, err := NewBoundingBox(95, 0, 5)
	assert.Error(t, err)

	_, err = NewBoundingBox(0, 0, 0)
	assert.Error(t, err)

	_, err = NewBoundingBox(0, 0, -2)
	assert.Error(t, err)
}

func TestNewBoundingBoxPolarClamp(t *testing.T) {
	// Near the pole the longitude delta degenerates; span must clamp to ±180
	box, err := NewBoundingBox(89.9999, 0, 50)
	require.NoError(t, err)

	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
	assert.Equal(t, 90.0, box.MaxLat)
	assert.False(t, math.IsInf(box.MinLng, 0))
	assert.False(t, math.IsInf(box.MaxLng, 0))
}

func TestBoundingBoxIsSupersetNotAuthority(t *testing.T) {
	// A box corner is farther than the radius; Contains alone must not be
	// treated as within-radius.
	box, err := NewBoundingBox(0, 0, 5)
	require.NoError(t, err)

	corner := struct{ lat, lng float64 }{box.MaxLat, box.MaxLng}
	assert.True(t, box.Contains(corner.lat, corner.lng))
	assert.Greater(t, Haversine(0, 0, corner.lat, corner.lng), 5.0)
}
