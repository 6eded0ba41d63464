package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/application"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type positionCall struct {
	rideID   uuid.UUID
	driverID uuid.UUID
	pos      address.Coordinate
}

type fakeRecorder struct {
	calls []positionCall
	err   error
}

func (f *fakeRecorder) RecordDriverPosition(_ context.Context, rideID, driverID uuid.UUID, pos address.Coordinate) (*application.RideDTO, error) {
	f.calls = append(f.calls, positionCall{rideID, driverID, pos})
	if f.err != nil {
		return nil, f.err
	}
	return &application.RideDTO{ID: rideID}, nil
}

func newTestConsumer(recorder PositionRecorder) *DriverLocationConsumer {
	return &DriverLocationConsumer{recorder: recorder, logger: zap.NewNop()}
}

func locationMessage(t *testing.T, eventType string, evt contracts.DriverLocationUpdatedEvent) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("driver-app", eventType, evt)
	require.NoError(t, err)
	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: contracts.TopicDriverLocations, Value: value}
}

func TestHandleMessage_RecordsPosition(t *testing.T) {
	recorder := &fakeRecorder{}
	c := newTestConsumer(recorder)
	evt := contracts.DriverLocationUpdatedEvent{
		RideID:     uuid.New(),
		DriverID:   uuid.New(),
		Latitude:   51.5031,
		Longitude:  -0.1132,
		RecordedAt: time.Now().UTC(),
	}

	err := c.handleMessage(context.Background(), locationMessage(t, contracts.DriverLocationUpdated, evt))
	require.NoError(t, err)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, evt.RideID, recorder.calls[0].rideID)
	assert.Equal(t, evt.DriverID, recorder.calls[0].driverID)
	assert.Equal(t, address.Coordinate{Latitude: 51.5031, Longitude: -0.1132}, recorder.calls[0].pos)
}

func TestHandleMessage_SkipsMalformedAndUnknown(t *testing.T) {
	recorder := &fakeRecorder{}
	c := newTestConsumer(recorder)

	require.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")}))
	require.NoError(t, c.handleMessage(context.Background(),
		locationMessage(t, "driver.went_offline", contracts.DriverLocationUpdatedEvent{})))

	badData := kafkago.Message{Value: []byte(`{"specversion":"1.0","type":"driver.location_updated","data":"oops"}`)}
	require.NoError(t, c.handleMessage(context.Background(), badData))

	assert.Empty(t, recorder.calls)
}

func TestHandleMessage_DropsFixesThatCannotApply(t *testing.T) {
	recorder := &fakeRecorder{err: apperr.NewInvalidStateError("completed", "tracking")}
	c := newTestConsumer(recorder)

	err := c.handleMessage(context.Background(),
		locationMessage(t, contracts.DriverLocationUpdated, contracts.DriverLocationUpdatedEvent{RideID: uuid.New()}))
	assert.NoError(t, err)
}

func TestHandleMessage_ReturnsTransientErrors(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("database unavailable")}
	c := newTestConsumer(recorder)

	err := c.handleMessage(context.Background(),
		locationMessage(t, contracts.DriverLocationUpdated, contracts.DriverLocationUpdatedEvent{RideID: uuid.New()}))
	assert.Error(t, err)
}
