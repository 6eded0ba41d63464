package events

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/application"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PositionRecorder stores driver position fixes against a ride.
type PositionRecorder interface {
	RecordDriverPosition(ctx context.Context, rideID, driverID uuid.UUID, pos address.Coordinate) (*application.RideDTO, error)
}

// DriverLocationConsumer feeds the driver app's position stream into rides.
type DriverLocationConsumer struct {
	consumer *kafka.Consumer
	recorder PositionRecorder
	logger   *zap.Logger
}

// NewDriverLocationConsumer creates a new DriverLocationConsumer.
func NewDriverLocationConsumer(
	brokers []string,
	groupID string,
	recorder PositionRecorder,
	logger *zap.Logger,
) *DriverLocationConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contracts.TopicDriverLocations, logger)
	return &DriverLocationConsumer{
		consumer: consumer,
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins consuming driver locations. This blocks until the context is cancelled.
func (c *DriverLocationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *DriverLocationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *DriverLocationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from driver location topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.DriverLocationUpdated:
		return c.handleLocationUpdated(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled driver location event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *DriverLocationConsumer) handleLocationUpdated(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contracts.DriverLocationUpdatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse DriverLocationUpdatedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	pos := address.Coordinate{Latitude: evt.Latitude, Longitude: evt.Longitude}
	_, err := c.recorder.RecordDriverPosition(ctx, evt.RideID, evt.DriverID, pos)
	if err == nil {
		return nil
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound, apperr.KindForbidden, apperr.KindInvalidState:
		// The fix can never apply; a finished or reassigned ride ignores late positions.
		c.logger.Debug("dropping driver location",
			zap.String("ride_id", evt.RideID.String()),
			zap.String("driver_id", evt.DriverID.String()),
			zap.Error(err),
		)
		return nil
	default:
		c.logger.Error("failed to record driver location",
			zap.String("ride_id", evt.RideID.String()),
			zap.Error(err),
		)
		return err
	}
}
