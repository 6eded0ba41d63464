// Package contracts defines the Kafka topics, event types and payloads the
// ride service produces and consumes.
package contracts

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicRideEvents      = "ride.events"
	TopicDriverLocations = "driver.locations"
)

const (
	RideRequested           = "ride.requested"
	RideAccepted            = "ride.accepted"
	RideApproachRouted      = "ride.approach_routed"
	RideDestinationSelected = "ride.destination_selected"
	RideTripStarted         = "ride.trip_started"
	RideCompleted           = "ride.completed"
	RideCancelled           = "ride.cancelled"

	DriverLocationUpdated = "driver.location_updated"
)

// RideRequestedEvent is published when a rider requests a ride.
type RideRequestedEvent struct {
	RideID     uuid.UUID `json:"ride_id"`
	RideNumber string    `json:"ride_number"`
	RiderID    uuid.UUID `json:"rider_id"`
	PickupText string    `json:"pickup_text"`
	PickupLat  float64   `json:"pickup_lat"`
	PickupLng  float64   `json:"pickup_lng"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RideAcceptedEvent is published when a driver accepts a ride.
type RideAcceptedEvent struct {
	RideID     uuid.UUID `json:"ride_id"`
	RideNumber string    `json:"ride_number"`
	RiderID    uuid.UUID `json:"rider_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RideApproachRoutedEvent is published when the route from the driver to the
// pickup point is first laid.
type RideApproachRoutedEvent struct {
	RideID               uuid.UUID `json:"ride_id"`
	DriverID             uuid.UUID `json:"driver_id"`
	DistanceKm           float64   `json:"distance_km"`
	EstimatedDurationMin int       `json:"estimated_duration_min"`
	Polyline             string    `json:"polyline"`
	OccurredAt           time.Time `json:"occurred_at"`
}

// RideDestinationSelectedEvent is published when the driver picks a drop-off candidate.
type RideDestinationSelectedEvent struct {
	RideID      uuid.UUID `json:"ride_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	DisplayText string    `json:"display_text"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RideTripStartedEvent is published when the trip towards the drop-off begins.
type RideTripStartedEvent struct {
	RideID      uuid.UUID `json:"ride_id"`
	RideNumber  string    `json:"ride_number"`
	RiderID     uuid.UUID `json:"rider_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	DropoffText string    `json:"dropoff_text"`
	DropoffLat  float64   `json:"dropoff_lat"`
	DropoffLng  float64   `json:"dropoff_lng"`
	DistanceKm  float64   `json:"distance_km"`
	StartedAt   time.Time `json:"started_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RideCompletedEvent is published when a trip finishes.
type RideCompletedEvent struct {
	RideID     uuid.UUID `json:"ride_id"`
	RideNumber string    `json:"ride_number"`
	RiderID    uuid.UUID `json:"rider_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	FinalFare  int64     `json:"final_fare"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RideCancelledEvent is published when a ride is cancelled.
type RideCancelledEvent struct {
	RideID      uuid.UUID `json:"ride_id"`
	RideNumber  string    `json:"ride_number"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// DriverLocationUpdatedEvent is consumed from the driver app's position stream.
type DriverLocationUpdatedEvent struct {
	RideID     uuid.UUID `json:"ride_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recorded_at"`
}
