package geo

import (
	polyline "github.com/twpayne/go-polyline"
)

// EncodePolyline encodes lat/lng points using the Encoded Polyline Algorithm
// Format at 1e-5 precision.
func EncodePolyline(points [][2]float64) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p[0], p[1]}
	}
	return string(polyline.EncodeCoords(coords))
}
