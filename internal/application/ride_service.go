package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	rideDomain "github.com/Kilat-Pet-Delivery/service-ride/internal/domain/ride"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventSource = "service-ride"

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// DestinationSource exposes the drop-off the driver picked for a ride.
type DestinationSource interface {
	Destination(rideID uuid.UUID) (address.AddressCandidate, bool)
	Release(rideID uuid.UUID)
}

// CreateRideRequest holds the data needed to request a ride.
type CreateRideRequest struct {
	PickupText string  `json:"pickup_text" binding:"required,max=300"`
	Latitude   float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude  float64 `json:"longitude" binding:"min=-180,max=180"`
	Notes      string  `json:"notes" binding:"max=1000"`
}

// RecordPositionRequest carries a driver position fix.
type RecordPositionRequest struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// CancelRideRequest holds the cancellation reason.
type CancelRideRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RideDTO is the response representation of a ride.
type RideDTO struct {
	ID             uuid.UUID                      `json:"id"`
	RideNumber     string                         `json:"ride_number"`
	RiderID        uuid.UUID                      `json:"rider_id"`
	DriverID       *uuid.UUID                     `json:"driver_id,omitempty"`
	Status         string                         `json:"status"`
	Pickup         address.AddressCandidate       `json:"pickup"`
	Dropoff        *address.AddressCandidate      `json:"dropoff,omitempty"`
	DriverPosition *address.Coordinate            `json:"driver_position,omitempty"`
	ApproachRoute  *rideDomain.RouteSpecification `json:"approach_route,omitempty"`
	TripRoute      *rideDomain.RouteSpecification `json:"trip_route,omitempty"`
	FinalFareCents *int64                         `json:"final_fare_cents,omitempty"`
	Currency       string                         `json:"currency"`
	AcceptedAt     *time.Time                     `json:"accepted_at,omitempty"`
	StartedAt      *time.Time                     `json:"started_at,omitempty"`
	CompletedAt    *time.Time                     `json:"completed_at,omitempty"`
	CancelledAt    *time.Time                     `json:"cancelled_at,omitempty"`
	CancelNote     string                         `json:"cancel_note,omitempty"`
	Notes          string                         `json:"notes,omitempty"`
	Version        int64                          `json:"version"`
	CreatedAt      time.Time                      `json:"created_at"`
	UpdatedAt      time.Time                      `json:"updated_at"`
}

// PaginatedRides is a page of rides.
type PaginatedRides = apperr.PaginatedResult[RideDTO]

// RideSettings tunes route estimates and pricing.
type RideSettings struct {
	ApproachSpeedKmh float64
	TripSpeedKmh     float64
	Currency         string
}

// RideService is the application service orchestrating ride use cases.
type RideService struct {
	repo         rideDomain.RideRepository
	fares        rideDomain.FareStrategy
	destinations DestinationSource
	publisher    EventPublisher
	settings     RideSettings
	logger       *zap.Logger
}

// NewRideService creates a new RideService.
func NewRideService(
	repo rideDomain.RideRepository,
	fares rideDomain.FareStrategy,
	destinations DestinationSource,
	publisher EventPublisher,
	settings RideSettings,
	logger *zap.Logger,
) *RideService {
	if settings.ApproachSpeedKmh <= 0 {
		settings.ApproachSpeedKmh = 30
	}
	if settings.TripSpeedKmh <= 0 {
		settings.TripSpeedKmh = settings.ApproachSpeedKmh
	}
	if settings.Currency == "" {
		settings.Currency = rideDomain.DefaultCurrency
	}
	return &RideService{
		repo:         repo,
		fares:        fares,
		destinations: destinations,
		publisher:    publisher,
		settings:     settings,
		logger:       logger,
	}
}

// CreateRide requests a new ride for the given rider.
func (s *RideService) CreateRide(ctx context.Context, riderID uuid.UUID, req CreateRideRequest) (*RideDTO, error) {
	pickup := address.AddressCandidate{
		DisplayText: req.PickupText,
		Coordinate:  address.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
	}

	rd, err := rideDomain.NewRide(riderID, pickup, s.settings.Currency, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rd); err != nil {
		return nil, fmt.Errorf("failed to save ride: %w", err)
	}

	evt := contracts.RideRequestedEvent{
		RideID:     rd.ID(),
		RideNumber: rd.RideNumber(),
		RiderID:    riderID,
		PickupText: pickup.DisplayText,
		PickupLat:  pickup.Coordinate.Latitude,
		PickupLng:  pickup.Coordinate.Longitude,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, contracts.RideRequested, rd.ID().String(), evt)

	result := toRideDTO(rd)
	return &result, nil
}

// AcceptRide assigns a driver to a requested ride.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID uuid.UUID) (*RideDTO, error) {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if err := rd.Accept(driverID); err != nil {
		return nil, err
	}

	rd.IncrementVersion()
	if err := s.repo.Update(ctx, rd); err != nil {
		return nil, err
	}

	evt := contracts.RideAcceptedEvent{
		RideID:     rd.ID(),
		RideNumber: rd.RideNumber(),
		RiderID:    rd.RiderID(),
		DriverID:   driverID,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, contracts.RideAccepted, rd.ID().String(), evt)

	result := toRideDTO(rd)
	return &result, nil
}

// RecordDriverPosition stores a position fix from the ride's driver. The first
// fix after acceptance lays the approach route to the pickup point.
func (s *RideService) RecordDriverPosition(ctx context.Context, rideID, driverID uuid.UUID, pos address.Coordinate) (*RideDTO, error) {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !rd.IsAssignedTo(driverID) {
		return nil, apperr.NewForbiddenError("ride is not assigned to this driver")
	}

	routed, err := rd.RecordDriverPosition(pos, s.settings.ApproachSpeedKmh)
	if err != nil {
		return nil, err
	}

	rd.IncrementVersion()
	if err := s.repo.Update(ctx, rd); err != nil {
		return nil, err
	}

	if routed {
		route := rd.ApproachRoute()
		evt := contracts.RideApproachRoutedEvent{
			RideID:               rd.ID(),
			DriverID:             driverID,
			DistanceKm:           route.DistanceKm,
			EstimatedDurationMin: route.EstimatedDurationMin,
			Polyline:             route.Polyline,
			OccurredAt:           time.Now().UTC(),
		}
		publishEvent(ctx, s.publisher, s.logger, contracts.RideApproachRouted, rd.ID().String(), evt)
	}

	result := toRideDTO(rd)
	return &result, nil
}

// StartTrip begins the trip towards the destination the driver selected.
func (s *RideService) StartTrip(ctx context.Context, rideID, driverID uuid.UUID) (*RideDTO, error) {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !rd.IsAssignedTo(driverID) {
		return nil, apperr.NewForbiddenError("ride is not assigned to this driver")
	}
	if !rd.Status().CanTransitionTo(rideDomain.StatusInProgress) {
		return nil, apperr.NewInvalidStateError(string(rd.Status()), string(rideDomain.StatusInProgress))
	}

	dropoff, ok := s.destinations.Destination(rideID)
	if !ok {
		return nil, apperr.NewValidationError("a destination must be selected before the trip can start")
	}

	if err := rd.StartTrip(dropoff, s.settings.TripSpeedKmh); err != nil {
		return nil, err
	}

	rd.IncrementVersion()
	if err := s.repo.Update(ctx, rd); err != nil {
		return nil, err
	}
	s.destinations.Release(rideID)

	evt := contracts.RideTripStartedEvent{
		RideID:      rd.ID(),
		RideNumber:  rd.RideNumber(),
		RiderID:     rd.RiderID(),
		DriverID:    driverID,
		DropoffText: dropoff.DisplayText,
		DropoffLat:  dropoff.Coordinate.Latitude,
		DropoffLng:  dropoff.Coordinate.Longitude,
		DistanceKm:  rd.TripRoute().DistanceKm,
		StartedAt:   *rd.Snapshot().StartedAt,
		OccurredAt:  time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, contracts.RideTripStarted, rd.ID().String(), evt)

	result := toRideDTO(rd)
	return &result, nil
}

// CompleteRide finishes the trip and prices it from the trip route.
func (s *RideService) CompleteRide(ctx context.Context, rideID, driverID uuid.UUID) (*RideDTO, error) {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !rd.IsAssignedTo(driverID) {
		return nil, apperr.NewForbiddenError("ride is not assigned to this driver")
	}
	if rd.TripRoute() == nil {
		return nil, apperr.NewInvalidStateError(string(rd.Status()), string(rideDomain.StatusCompleted))
	}

	fare, err := s.fares.Calculate(rideDomain.FareParams{
		DistanceKm:  rd.TripRoute().DistanceKm,
		DurationMin: rd.TripRoute().EstimatedDurationMin,
	})
	if err != nil {
		return nil, apperr.NewValidationError(fmt.Sprintf("fare error: %v", err))
	}

	if err := rd.Complete(fare); err != nil {
		return nil, err
	}

	rd.IncrementVersion()
	if err := s.repo.Update(ctx, rd); err != nil {
		return nil, err
	}

	evt := contracts.RideCompletedEvent{
		RideID:     rd.ID(),
		RideNumber: rd.RideNumber(),
		RiderID:    rd.RiderID(),
		DriverID:   driverID,
		FinalFare:  fare,
		Currency:   rd.Currency(),
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, contracts.RideCompleted, rd.ID().String(), evt)

	result := toRideDTO(rd)
	return &result, nil
}

// CancelRide cancels a ride that is not yet in a terminal state. Only the
// rider, the assigned driver or an admin may cancel.
func (s *RideService) CancelRide(ctx context.Context, rideID, cancelledBy uuid.UUID, isAdmin bool, reason string) (*RideDTO, error) {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && rd.RiderID() != cancelledBy && !rd.IsAssignedTo(cancelledBy) {
		return nil, apperr.NewForbiddenError("ride does not belong to this user")
	}

	if err := rd.Cancel(reason); err != nil {
		return nil, err
	}

	rd.IncrementVersion()
	if err := s.repo.Update(ctx, rd); err != nil {
		return nil, err
	}
	s.destinations.Release(rideID)

	evt := contracts.RideCancelledEvent{
		RideID:      rd.ID(),
		RideNumber:  rd.RideNumber(),
		CancelledBy: cancelledBy,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, contracts.RideCancelled, rd.ID().String(), evt)

	result := toRideDTO(rd)
	return &result, nil
}

// GetRide retrieves a single ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID uuid.UUID) (*RideDTO, error) {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	result := toRideDTO(rd)
	return &result, nil
}

// GetRideByNumber retrieves a single ride by its RD- number.
func (s *RideService) GetRideByNumber(ctx context.Context, number string) (*RideDTO, error) {
	rd, err := s.repo.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	result := toRideDTO(rd)
	return &result, nil
}

// GetRiderRides retrieves paginated rides requested by a rider.
func (s *RideService) GetRiderRides(ctx context.Context, riderID uuid.UUID, page, limit int) (*PaginatedRides, error) {
	rides, total, err := s.repo.FindByRiderID(ctx, riderID, page, limit)
	if err != nil {
		return nil, err
	}
	result := apperr.NewPaginatedResult(toRideDTOs(rides), total, page, limit)
	return &result, nil
}

// GetDriverRides retrieves paginated rides assigned to a driver.
func (s *RideService) GetDriverRides(ctx context.Context, driverID uuid.UUID, page, limit int) (*PaginatedRides, error) {
	rides, total, err := s.repo.FindByDriverID(ctx, driverID, page, limit)
	if err != nil {
		return nil, err
	}
	result := apperr.NewPaginatedResult(toRideDTOs(rides), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// RideStatsDTO holds ride statistics for the admin dashboard.
type RideStatsDTO struct {
	TotalRides int64            `json:"total_rides"`
	ByStatus   map[string]int64 `json:"by_status"`
}

// ListAllRides returns a paginated list of all rides (admin).
func (s *RideService) ListAllRides(ctx context.Context, page, limit int) ([]RideDTO, int64, error) {
	rides, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rides: %w", err)
	}
	return toRideDTOs(rides), total, nil
}

// GetRideStats returns aggregate ride statistics (admin).
func (s *RideService) GetRideStats(ctx context.Context) (*RideStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ride stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &RideStatsDTO{
		TotalRides: total,
		ByStatus:   counts,
	}, nil
}

// --- Helpers ---

func toRideDTO(rd *rideDomain.Ride) RideDTO {
	s := rd.Snapshot()
	return RideDTO{
		ID:             s.ID,
		RideNumber:     s.RideNumber,
		RiderID:        s.RiderID,
		DriverID:       s.DriverID,
		Status:         string(s.Status),
		Pickup:         s.Pickup,
		Dropoff:        s.Dropoff,
		DriverPosition: s.DriverPosition,
		ApproachRoute:  s.ApproachRoute,
		TripRoute:      s.TripRoute,
		FinalFareCents: s.FinalFareCents,
		Currency:       s.Currency,
		AcceptedAt:     s.AcceptedAt,
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
		CancelledAt:    s.CancelledAt,
		CancelNote:     s.CancelNote,
		Notes:          s.Notes,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toRideDTOs(rides []*rideDomain.Ride) []RideDTO {
	dtos := make([]RideDTO, len(rides))
	for i, rd := range rides {
		dtos[i] = toRideDTO(rd)
	}
	return dtos
}

// publishEvent wraps data in a CloudEvent on the ride events topic. Failures
// are logged; the use case has already been persisted.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, eventType, subject string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = subject

	if err := publisher.PublishEvent(ctx, contracts.TopicRideEvents, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", contracts.TopicRideEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
