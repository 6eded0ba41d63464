package ride

import (
	"context"

	"github.com/google/uuid"
)

// RideRepository defines the persistence contract for ride aggregates.
type RideRepository interface {
	// FindByID retrieves a ride by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Ride, error)

	// FindByNumber retrieves a ride by its human-readable ride number.
	FindByNumber(ctx context.Context, number string) (*Ride, error)

	// FindByRiderID retrieves rides requested by a rider with pagination.
	FindByRiderID(ctx context.Context, riderID uuid.UUID, page, limit int) ([]*Ride, int64, error)

	// FindByDriverID retrieves rides assigned to a driver with pagination.
	FindByDriverID(ctx context.Context, driverID uuid.UUID, page, limit int) ([]*Ride, int64, error)

	// ListAll retrieves all rides with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Ride, int64, error)

	// CountByStatus returns ride counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new ride.
	Save(ctx context.Context, ride *Ride) error

	// Update persists changes to an existing ride with optimistic locking.
	Update(ctx context.Context, ride *Ride) error
}
