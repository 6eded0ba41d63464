package ride

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/google/uuid"
)

const rideNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Ride is the aggregate root for the ride domain.
type Ride struct {
	id         uuid.UUID
	rideNumber string
	riderID    uuid.UUID
	driverID   *uuid.UUID
	status     RideStatus

	pickup  address.AddressCandidate
	dropoff *address.AddressCandidate

	driverPosition *address.Coordinate
	approachRoute  *RouteSpecification
	tripRoute      *RouteSpecification

	finalFareCents *int64
	currency       string

	acceptedAt  *time.Time
	startedAt   *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string
	notes       string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot carries every persisted field of a Ride.
type Snapshot struct {
	ID             uuid.UUID
	RideNumber     string
	RiderID        uuid.UUID
	DriverID       *uuid.UUID
	Status         RideStatus
	Pickup         address.AddressCandidate
	Dropoff        *address.AddressCandidate
	DriverPosition *address.Coordinate
	ApproachRoute  *RouteSpecification
	TripRoute      *RouteSpecification
	FinalFareCents *int64
	Currency       string
	AcceptedAt     *time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelNote     string
	Notes          string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// generateRideNumber creates a ride number in the format "RD-XXXXXX".
func generateRideNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(rideNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate ride number: %w", err)
		}
		result[i] = rideNumberChars[n.Int64()]
	}
	return "RD-" + string(result), nil
}

// NewRide creates a new Ride with status=requested.
func NewRide(riderID uuid.UUID, pickup address.AddressCandidate, currency, notes string) (*Ride, error) {
	if riderID == uuid.Nil {
		return nil, apperr.NewValidationError("rider ID is required")
	}
	if pickup.DisplayText == "" {
		return nil, apperr.NewValidationError("pickup address is required")
	}
	if !validCoordinate(pickup.Coordinate) {
		return nil, apperr.NewValidationError("pickup coordinate is out of range")
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	rideNumber, err := generateRideNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Ride{
		id:         uuid.New(),
		rideNumber: rideNumber,
		riderID:    riderID,
		status:     StatusRequested,
		pickup:     pickup,
		currency:   currency,
		notes:      notes,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Ride from persistence data (no validation).
func Reconstruct(s Snapshot) *Ride {
	return &Ride{
		id:             s.ID,
		rideNumber:     s.RideNumber,
		riderID:        s.RiderID,
		driverID:       s.DriverID,
		status:         s.Status,
		pickup:         s.Pickup,
		dropoff:        s.Dropoff,
		driverPosition: s.DriverPosition,
		approachRoute:  s.ApproachRoute,
		tripRoute:      s.TripRoute,
		finalFareCents: s.FinalFareCents,
		currency:       s.Currency,
		acceptedAt:     s.AcceptedAt,
		startedAt:      s.StartedAt,
		completedAt:    s.CompletedAt,
		cancelledAt:    s.CancelledAt,
		cancelNote:     s.CancelNote,
		notes:          s.Notes,
		version:        s.Version,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
	}
}

// Snapshot exports the ride's state for persistence and DTO mapping.
func (r *Ride) Snapshot() Snapshot {
	return Snapshot{
		ID:             r.id,
		RideNumber:     r.rideNumber,
		RiderID:        r.riderID,
		DriverID:       r.driverID,
		Status:         r.status,
		Pickup:         r.pickup,
		Dropoff:        r.dropoff,
		DriverPosition: r.driverPosition,
		ApproachRoute:  r.approachRoute,
		TripRoute:      r.tripRoute,
		FinalFareCents: r.finalFareCents,
		Currency:       r.currency,
		AcceptedAt:     r.acceptedAt,
		StartedAt:      r.startedAt,
		CompletedAt:    r.completedAt,
		CancelledAt:    r.cancelledAt,
		CancelNote:     r.cancelNote,
		Notes:          r.notes,
		Version:        r.version,
		CreatedAt:      r.createdAt,
		UpdatedAt:      r.updatedAt,
	}
}

// --- Getters ---

func (r *Ride) ID() uuid.UUID { return r.id }
func (r *Ride) RideNumber() string { return r.rideNumber }
func (r *Ride) RiderID() uuid.UUID { return r.riderID }
func (r *Ride) DriverID() *uuid.UUID { return r.driverID }
func (r *Ride) Status() RideStatus { return r.status }
func (r *Ride) Pickup() address.AddressCandidate { return r.pickup }
func (r *Ride) Dropoff() *address.AddressCandidate { return r.dropoff }
func (r *Ride) DriverPosition() *address.Coordinate { return r.driverPosition }
func (r *Ride) ApproachRoute() *RouteSpecification { return r.approachRoute }
func (r *Ride) TripRoute() *RouteSpecification { return r.tripRoute }
func (r *Ride) FinalFareCents() *int64 { return r.finalFareCents }
func (r *Ride) Currency() string { return r.currency }
func (r *Ride) Version() int64 { return r.version }

// IsAssignedTo reports whether driverID is the ride's driver.
func (r *Ride) IsAssignedTo(driverID uuid.UUID) bool {
	return r.driverID != nil && *r.driverID == driverID
}

// --- Behavior ---

// Accept assigns a driver to a requested ride.
func (r *Ride) Accept(driverID uuid.UUID) error {
	if !r.status.CanTransitionTo(StatusAccepted) {
		return apperr.NewInvalidStateError(string(r.status), string(StatusAccepted))
	}
	if driverID == uuid.Nil {
		return apperr.NewValidationError("driver ID is required")
	}
	now := time.Now().UTC()
	r.driverID = &driverID
	r.status = StatusAccepted
	r.acceptedAt = &now
	r.updatedAt = now
	return nil
}

// RecordDriverPosition stores the driver's latest position. While the ride is
// accepted and no approach route exists yet, it also lays the approach route
// from the position to the pickup point and reports true. Later positions do
// not recompute it.
func (r *Ride) RecordDriverPosition(pos address.Coordinate, avgSpeedKmh float64) (bool, error) {
	if r.status != StatusAccepted && r.status != StatusInProgress {
		return false, apperr.NewInvalidStateError(string(r.status), "tracking")
	}
	if !validCoordinate(pos) {
		return false, apperr.NewValidationError("position coordinate is out of range")
	}

	r.driverPosition = &pos
	r.updatedAt = time.Now().UTC()

	if r.status != StatusAccepted || r.approachRoute != nil {
		return false, nil
	}
	route := NewRouteSpecification(pos, r.pickup.Coordinate, avgSpeedKmh)
	r.approachRoute = &route
	return true, nil
}

// StartTrip begins the trip towards the chosen drop-off.
func (r *Ride) StartTrip(dropoff address.AddressCandidate, avgSpeedKmh float64) error {
	if !r.status.CanTransitionTo(StatusInProgress) {
		return apperr.NewInvalidStateError(string(r.status), string(StatusInProgress))
	}
	if !validCoordinate(dropoff.Coordinate) {
		return apperr.NewValidationError("drop-off coordinate is out of range")
	}

	now := time.Now().UTC()
	route := NewRouteSpecification(r.pickup.Coordinate, dropoff.Coordinate, avgSpeedKmh)
	r.dropoff = &dropoff
	r.tripRoute = &route
	r.status = StatusInProgress
	r.startedAt = &now
	r.updatedAt = now
	return nil
}

// Complete finishes the trip with the final fare.
func (r *Ride) Complete(finalFareCents int64) error {
	if !r.status.CanTransitionTo(StatusCompleted) {
		return apperr.NewInvalidStateError(string(r.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	r.status = StatusCompleted
	r.finalFareCents = &finalFareCents
	r.completedAt = &now
	r.updatedAt = now
	return nil
}

// Cancel transitions the ride to cancelled if it is not in a terminal state.
func (r *Ride) Cancel(reason string) error {
	if !r.status.CanBeCancelled() {
		return apperr.NewInvalidStateError(string(r.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	r.status = StatusCancelled
	r.cancelNote = reason
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Ride) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}

func validCoordinate(c address.Coordinate) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}
