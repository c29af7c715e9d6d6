package trip_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanderplan/wanderplan/internal/trip"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Paris → London is roughly 344 km.
	d := trip.Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 2)
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, trip.Haversine(48.8566, 2.3522, 48.8566, 2.3522))
}

func TestHaversine_Symmetric(t *testing.T) {
	a := trip.Haversine(35.6762, 139.6503, 34.6937, 135.5023)
	b := trip.Haversine(34.6937, 135.5023, 35.6762, 139.6503)
	assert.Equal(t, a, b)
}

func TestHaversine_RoundedToTwoDecimals(t *testing.T) {
	d := trip.Haversine(48.8566, 2.3522, 48.8606, 2.3376)
	assert.Equal(t, math.Round(d*100)/100, d, "value carries at most 2 decimal places")
}
