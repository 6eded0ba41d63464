//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/application"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/contracts"
	rideDomain "github.com/Kilat-Pet-Delivery/service-ride/internal/domain/ride"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDriverLocation_LaysApproachRoute verifies that a driver position
// published on driver.locations is recorded against the accepted ride, lays
// the approach route to the pickup point and announces it on ride.events.
func TestDriverLocation_LaysApproachRoute(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRideStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx := context.Background()
	created, err := stack.Rides.CreateRide(ctx, uuid.New(), application.CreateRideRequest{
		PickupText: "221 Baker St, London",
		Latitude:   51.5237,
		Longitude:  -0.1585,
	})
	require.NoError(t, err)

	driverID := uuid.New()
	_, err = stack.Rides.AcceptRide(ctx, created.ID, driverID)
	require.NoError(t, err)

	// Start the consumer.
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = stack.Consumer.Start(consumerCtx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := contracts.DriverLocationUpdatedEvent{
		RideID:     created.ID,
		DriverID:   driverID,
		Latitude:   51.5031,
		Longitude:  -0.1132,
		RecordedAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, contracts.TopicDriverLocations,
		"driver-app", contracts.DriverLocationUpdated, evt)

	// Assert: the approach route is persisted.
	model := waitForApproachRoute(t, infra.DB, created.ID, 15*time.Second)
	var route rideDomain.RouteSpecification
	require.NoError(t, json.Unmarshal(model.ApproachRoute, &route))
	assert.InDelta(t, 3.86, route.DistanceKm, 0.05)
	assert.Equal(t, 51.5237, route.ToLat)

	// Assert: RideApproachRoutedEvent on ride.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, contracts.TopicRideEvents,
		contracts.RideApproachRouted, 15*time.Second)

	var routed contracts.RideApproachRoutedEvent
	require.NoError(t, ce.ParseData(&routed))
	assert.Equal(t, created.ID, routed.RideID)
	assert.Equal(t, driverID, routed.DriverID)
	assert.NotEmpty(t, routed.Polyline)
}

// TestAcceptRide_PersistsAssignment verifies that acceptance is stored and a
// second driver cannot take the same ride.
func TestAcceptRide_PersistsAssignment(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRideStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	created, err := stack.Rides.CreateRide(ctx, uuid.New(), application.CreateRideRequest{
		PickupText: "Paris, 75001",
		Latitude:   48.8566,
		Longitude:  2.3522,
	})
	require.NoError(t, err)

	_, err = stack.Rides.AcceptRide(ctx, created.ID, uuid.New())
	require.NoError(t, err)

	_, err = stack.Rides.AcceptRide(ctx, created.ID, uuid.New())
	require.Error(t, err, "a ride can only be accepted once")

	stats, err := stack.Rides.GetRideStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ByStatus["accepted"])
}
