package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	polyline "github.com/twpayne/go-polyline"
)

func TestHaversineKm(t *testing.T) {
	// London to Paris.
	d := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 343.5, d, 1.0)

	assert.Zero(t, HaversineKm(3.139, 101.6869, 3.139, 101.6869))
}

func TestTravelMinutes(t *testing.T) {
	assert.Equal(t, 30, TravelMinutes(15, 30))
	assert.Equal(t, 1, TravelMinutes(0.1, 30))
	assert.Equal(t, 0, TravelMinutes(0, 30))
	assert.Equal(t, 0, TravelMinutes(10, 0))
}

func TestEncodePolyline_ReferenceVector(t *testing.T) {
	points := [][2]float64{{38.5, -120.2}, {40.7, -120.95}, {43.252, -126.453}}
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", EncodePolyline(points))
}

func TestEncodePolyline_DecodesWithinPrecision(t *testing.T) {
	points := [][2]float64{{51.5237, -0.1585}, {51.5033, -0.1195}}

	got, rest, err := polyline.DecodeCoords([]byte(EncodePolyline(points)))
	require.NoError(t, err)
	assert.Empty(t, rest)

	require.Len(t, got, len(points))
	for i := range points {
		assert.InDelta(t, points[i][0], got[i][0], 1e-5)
		assert.InDelta(t, points[i][1], got[i][1], 1e-5)
	}
}

func TestEncodePolyline_Empty(t *testing.T) {
	assert.Equal(t, "", EncodePolyline(nil))
}
