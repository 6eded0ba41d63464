// Package geo holds the small amount of spherical geometry the ride service
// needs: great-circle distances and encoded polylines.
package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm calculates the distance between two coordinates in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// TravelMinutes estimates the travel time for a distance at an average speed,
// rounded up to whole minutes.
func TravelMinutes(distanceKm, speedKmh float64) int {
	if distanceKm <= 0 || speedKmh <= 0 {
		return 0
	}
	return int(math.Ceil(distanceKm / speedKmh * 60))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
