package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	rideDomain "github.com/Kilat-Pet-Delivery/service-ride/internal/domain/ride"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RideModel is the GORM model for the rides table.
type RideModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RideNumber     string          `gorm:"uniqueIndex;not null;size:20"`
	RiderID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	DriverID       *uuid.UUID      `gorm:"type:uuid;index"`
	Status         string          `gorm:"not null;size:30;index"`
	Pickup         json.RawMessage `gorm:"type:jsonb;not null"`
	Dropoff        json.RawMessage `gorm:"type:jsonb"`
	DriverPosition json.RawMessage `gorm:"type:jsonb"`
	ApproachRoute  json.RawMessage `gorm:"type:jsonb"`
	TripRoute      json.RawMessage `gorm:"type:jsonb"`
	FinalFareCents *int64          `gorm:""`
	Currency       string          `gorm:"not null;size:3;default:'USD'"`
	AcceptedAt     *time.Time      `gorm:""`
	StartedAt      *time.Time      `gorm:""`
	CompletedAt    *time.Time      `gorm:""`
	CancelledAt    *time.Time      `gorm:""`
	CancelNote     string          `gorm:"size:500"`
	Notes          string          `gorm:"size:1000"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RideModel) TableName() string {
	return "rides"
}

// GormRideRepository is the GORM-based implementation of RideRepository.
type GormRideRepository struct {
	db *gorm.DB
}

// NewGormRideRepository creates a new GormRideRepository.
func NewGormRideRepository(db *gorm.DB) *GormRideRepository {
	return &GormRideRepository{db: db}
}

// FindByID retrieves a ride by its unique identifier.
func (r *GormRideRepository) FindByID(ctx context.Context, id uuid.UUID) (*rideDomain.Ride, error) {
	var model RideModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Ride", id.String())
		}
		return nil, fmt.Errorf("failed to find ride by ID: %w", err)
	}
	return toDomainRide(&model)
}

// FindByNumber retrieves a ride by its ride number.
func (r *GormRideRepository) FindByNumber(ctx context.Context, number string) (*rideDomain.Ride, error) {
	var model RideModel
	if err := r.db.WithContext(ctx).Where("ride_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Ride", number)
		}
		return nil, fmt.Errorf("failed to find ride by number: %w", err)
	}
	return toDomainRide(&model)
}

// FindByRiderID retrieves rides for a specific rider with pagination.
func (r *GormRideRepository) FindByRiderID(ctx context.Context, riderID uuid.UUID, page, limit int) ([]*rideDomain.Ride, int64, error) {
	return r.findPage(ctx, "rider_id = ?", riderID, page, limit)
}

// FindByDriverID retrieves rides for a specific driver with pagination.
func (r *GormRideRepository) FindByDriverID(ctx context.Context, driverID uuid.UUID, page, limit int) ([]*rideDomain.Ride, int64, error) {
	return r.findPage(ctx, "driver_id = ?", driverID, page, limit)
}

// ListAll retrieves all rides with pagination (admin).
func (r *GormRideRepository) ListAll(ctx context.Context, page, limit int) ([]*rideDomain.Ride, int64, error) {
	return r.findPage(ctx, "", nil, page, limit)
}

func (r *GormRideRepository) findPage(ctx context.Context, where string, arg interface{}, page, limit int) ([]*rideDomain.Ride, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&RideModel{})
		if where != "" {
			q = q.Where(where, arg)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	var models []RideModel
	offset := (page - 1) * limit
	if err := scoped().
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find rides: %w", err)
	}

	rides := make([]*rideDomain.Ride, len(models))
	for i := range models {
		rd, err := toDomainRide(&models[i])
		if err != nil {
			return nil, 0, err
		}
		rides[i] = rd
	}

	return rides, total, nil
}

// Save persists a new ride.
func (r *GormRideRepository) Save(ctx context.Context, rd *rideDomain.Ride) error {
	model, err := toRideModel(rd)
	if err != nil {
		return fmt.Errorf("failed to convert ride to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save ride: %w", err)
	}
	return nil
}

// Update persists changes to an existing ride with optimistic locking.
func (r *GormRideRepository) Update(ctx context.Context, rd *rideDomain.Ride) error {
	model, err := toRideModel(rd)
	if err != nil {
		return fmt.Errorf("failed to convert ride to model: %w", err)
	}

	// IncrementVersion has already been called, so the stored row is one behind.
	expectedVersion := rd.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&RideModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"driver_id":        model.DriverID,
			"status":           model.Status,
			"pickup":           model.Pickup,
			"dropoff":          model.Dropoff,
			"driver_position":  model.DriverPosition,
			"approach_route":   model.ApproachRoute,
			"trip_route":       model.TripRoute,
			"final_fare_cents": model.FinalFareCents,
			"currency":         model.Currency,
			"accepted_at":      model.AcceptedAt,
			"started_at":       model.StartedAt,
			"completed_at":     model.CompletedAt,
			"cancelled_at":     model.CancelledAt,
			"cancel_note":      model.CancelNote,
			"notes":            model.Notes,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update ride: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperr.NewConflictError("ride was modified by another transaction")
	}

	return nil
}

// CountByStatus returns ride counts grouped by status (admin).
func (r *GormRideRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&RideModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

// marshalOptional encodes v, storing SQL NULL for nil pointers.
func marshalOptional[T any](v *T) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalOptional[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func toRideModel(rd *rideDomain.Ride) (*RideModel, error) {
	s := rd.Snapshot()

	pickupJSON, err := json.Marshal(s.Pickup)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pickup: %w", err)
	}
	dropoffJSON, err := marshalOptional(s.Dropoff)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dropoff: %w", err)
	}
	positionJSON, err := marshalOptional(s.DriverPosition)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal driver position: %w", err)
	}
	approachJSON, err := marshalOptional(s.ApproachRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal approach route: %w", err)
	}
	tripJSON, err := marshalOptional(s.TripRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trip route: %w", err)
	}

	return &RideModel{
		ID:             s.ID,
		RideNumber:     s.RideNumber,
		RiderID:        s.RiderID,
		DriverID:       s.DriverID,
		Status:         string(s.Status),
		Pickup:         pickupJSON,
		Dropoff:        dropoffJSON,
		DriverPosition: positionJSON,
		ApproachRoute:  approachJSON,
		TripRoute:      tripJSON,
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
	}, nil
}

func toDomainRide(m *RideModel) (*rideDomain.Ride, error) {
	var pickup address.AddressCandidate
	if err := json.Unmarshal(m.Pickup, &pickup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pickup: %w", err)
	}
	dropoff, err := unmarshalOptional[address.AddressCandidate](m.Dropoff)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal dropoff: %w", err)
	}
	position, err := unmarshalOptional[address.Coordinate](m.DriverPosition)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal driver position: %w", err)
	}
	approach, err := unmarshalOptional[rideDomain.RouteSpecification](m.ApproachRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal approach route: %w", err)
	}
	trip, err := unmarshalOptional[rideDomain.RouteSpecification](m.TripRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip route: %w", err)
	}

	status, err := rideDomain.ParseRideStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return rideDomain.Reconstruct(rideDomain.Snapshot{
		ID:             m.ID,
		RideNumber:     m.RideNumber,
		RiderID:        m.RiderID,
		DriverID:       m.DriverID,
		Status:         status,
		Pickup:         pickup,
		Dropoff:        dropoff,
		DriverPosition: position,
		ApproachRoute:  approach,
		TripRoute:      trip,
		FinalFareCents: m.FinalFareCents,
		Currency:       m.Currency,
		AcceptedAt:     m.AcceptedAt,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
		CancelledAt:    m.CancelledAt,
		CancelNote:     m.CancelNote,
		Notes:          m.Notes,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}), nil
}
