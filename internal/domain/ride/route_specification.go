package ride

import (
	"math"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/geo"
)

// RouteSpecification is a value object describing a straight-line route
// estimate between two points.
type RouteSpecification struct {
	FromLat              float64 `json:"from_lat"`
	FromLng              float64 `json:"from_lng"`
	ToLat                float64 `json:"to_lat"`
	ToLng                float64 `json:"to_lng"`
	DistanceKm           float64 `json:"distance_km"`
	EstimatedDurationMin int     `json:"estimated_duration_min"`
	Polyline             string  `json:"polyline"`
}

// NewRouteSpecification estimates a route from one coordinate to another at
// the given average speed.
func NewRouteSpecification(from, to address.Coordinate, avgSpeedKmh float64) RouteSpecification {
	distance := geo.HaversineKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	return RouteSpecification{
		FromLat:              from.Latitude,
		FromLng:              from.Longitude,
		ToLat:                to.Latitude,
		ToLng:                to.Longitude,
		DistanceKm:           math.Round(distance*1000) / 1000,
		EstimatedDurationMin: geo.TravelMinutes(distance, avgSpeedKmh),
		Polyline: geo.EncodePolyline([][2]float64{
			{from.Latitude, from.Longitude},
			{to.Latitude, to.Longitude},
		}),
	}
}
