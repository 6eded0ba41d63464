package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	rideDomain "github.com/Kilat-Pet-Delivery/service-ride/internal/domain/ride"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/search"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minQueryLength = 3

// SearchDestinationRequest is the body of a destination search.
type SearchDestinationRequest struct {
	Query string `json:"query" binding:"required,min=3,max=200"`
}

// SelectDestinationRequest picks a candidate from a specific list generation.
type SelectDestinationRequest struct {
	Generation uint64 `json:"generation" binding:"required"`
	Index      *int   `json:"index" binding:"required"`
}

// DestinationDTO is the response representation of a ride's destination search.
type DestinationDTO struct {
	RideID           uuid.UUID                  `json:"ride_id"`
	Generation       uint64                     `json:"generation"`
	Candidates       []address.AddressCandidate `json:"candidates"`
	SelectedIndex    *int                       `json:"selected_index,omitempty"`
	Selected         *address.AddressCandidate  `json:"selected,omitempty"`
	DestinationReady bool                       `json:"destination_ready"`
}

// DestinationService runs the drop-off search for accepted rides.
type DestinationService struct {
	repo      rideDomain.RideRepository
	provider  search.Provider
	sessions  *DestinationSessions
	publisher EventPublisher
	logger    *zap.Logger
}

// NewDestinationService creates a new DestinationService.
func NewDestinationService(
	repo rideDomain.RideRepository,
	provider search.Provider,
	sessions *DestinationSessions,
	publisher EventPublisher,
	logger *zap.Logger,
) *DestinationService {
	return &DestinationService{
		repo:      repo,
		provider:  provider,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
	}
}

// SearchDestination queries the search provider around the pickup point and
// replaces the ride's candidate list with the formatted results. Any earlier
// selection is cleared, including when the search fails.
func (s *DestinationService) SearchDestination(ctx context.Context, rideID, driverID uuid.UUID, query string) (*DestinationDTO, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return nil, apperr.NewValidationError(fmt.Sprintf("query must be at least %d characters", minQueryLength))
	}

	rd, err := s.loadDriverRide(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	session := s.sessions.getOrCreate(rideID)
	if err := s.recheckAccepted(ctx, rideID); err != nil {
		return nil, err
	}
	ticket := session.begin()

	pickup := rd.Pickup().Coordinate
	places, searchErr := s.provider.Search(ctx, search.Query{Text: query, Near: &pickup})

	var candidates []address.AddressCandidate
	if searchErr == nil {
		candidates = address.FormatBatch(places)
	}

	if _, err := session.complete(ticket, candidates); err != nil {
		s.logger.Info("discarding superseded destination search",
			zap.String("ride_id", rideID.String()),
			zap.String("query", query),
		)
		return nil, apperr.NewConflictError("search superseded by a newer query")
	}

	if searchErr != nil {
		if errors.Is(searchErr, search.ErrNoResults) {
			return nil, apperr.NewNotFoundError("Address", query)
		}
		s.logger.Error("destination search failed",
			zap.String("ride_id", rideID.String()),
			zap.Error(searchErr),
		)
		return nil, apperr.NewUnavailableError("address search unavailable", searchErr)
	}

	s.logger.Debug("destination candidates replaced",
		zap.String("ride_id", rideID.String()),
		zap.Int("candidates", len(candidates)),
	)

	result := toDestinationDTO(rideID, session.view())
	return &result, nil
}

// GetDestination returns the current candidate list and selection of a ride.
func (s *DestinationService) GetDestination(ctx context.Context, rideID, driverID uuid.UUID) (*DestinationDTO, error) {
	if _, err := s.loadDriverRide(ctx, rideID, driverID); err != nil {
		return nil, err
	}
	session, ok := s.sessions.get(rideID)
	if !ok {
		return &DestinationDTO{RideID: rideID, Candidates: []address.AddressCandidate{}}, nil
	}
	result := toDestinationDTO(rideID, session.view())
	return &result, nil
}

// SelectDestination picks candidate index from the list identified by generation.
func (s *DestinationService) SelectDestination(ctx context.Context, rideID, driverID uuid.UUID, generation uint64, index int) (*DestinationDTO, error) {
	if _, err := s.loadDriverRide(ctx, rideID, driverID); err != nil {
		return nil, err
	}

	session, ok := s.sessions.get(rideID)
	if !ok {
		return nil, apperr.NewConflictError("no destination search for this ride")
	}

	if err := session.selectAt(generation, index); err != nil {
		switch {
		case errors.Is(err, errStaleGeneration):
			return nil, apperr.NewConflictError("candidate list has been replaced by a newer search")
		case errors.Is(err, search.ErrOutOfRange):
			return nil, apperr.NewValidationError(err.Error())
		default:
			return nil, err
		}
	}

	view := session.view()
	result := toDestinationDTO(rideID, view)
	if result.Selected != nil {
		evt := contracts.RideDestinationSelectedEvent{
			RideID:      rideID,
			DriverID:    driverID,
			DisplayText: result.Selected.DisplayText,
			Latitude:    result.Selected.Coordinate.Latitude,
			Longitude:   result.Selected.Coordinate.Longitude,
			OccurredAt:  time.Now().UTC(),
		}
		publishEvent(ctx, s.publisher, s.logger, contracts.RideDestinationSelected, rideID.String(), evt)
	}
	return &result, nil
}

func (s *DestinationService) loadDriverRide(ctx context.Context, rideID, driverID uuid.UUID) (*rideDomain.Ride, error) {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !rd.IsAssignedTo(driverID) {
		return nil, apperr.NewForbiddenError("ride is not assigned to this driver")
	}
	if rd.Status() != rideDomain.StatusAccepted {
		return nil, apperr.NewInvalidStateError(string(rd.Status()), "destination search")
	}
	return rd, nil
}

// recheckAccepted drops the ride's session again when a trip start or
// cancellation committed after the ownership check.
func (s *DestinationService) recheckAccepted(ctx context.Context, rideID uuid.UUID) error {
	rd, err := s.repo.FindByID(ctx, rideID)
	if err == nil && rd.Status() == rideDomain.StatusAccepted {
		return nil
	}
	s.sessions.Release(rideID)
	if err != nil {
		return err
	}
	return apperr.NewInvalidStateError(string(rd.Status()), "destination search")
}

func toDestinationDTO(rideID uuid.UUID, v sessionView) DestinationDTO {
	dto := DestinationDTO{
		RideID:           rideID,
		Generation:       v.Generation,
		Candidates:       v.Snapshot.Candidates,
		SelectedIndex:    v.Snapshot.SelectedIndex,
		DestinationReady: v.Ready,
	}
	if idx := v.Snapshot.SelectedIndex; idx != nil {
		selected := v.Snapshot.Candidates[*idx]
		dto.Selected = &selected
	}
	return dto
}
