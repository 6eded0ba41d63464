package repository

import (
	"testing"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	rideDomain "github.com/Kilat-Pet-Delivery/service-ride/internal/domain/ride"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRideModelConversion(t *testing.T) {
	pickup := address.AddressCandidate{
		DisplayText: "221 Baker St, London",
		Coordinate:  address.Coordinate{Latitude: 51.5237, Longitude: -0.1585},
	}
	rd, err := rideDomain.NewRide(uuid.New(), pickup, "", "")
	require.NoError(t, err)

	model, err := toRideModel(rd)
	require.NoError(t, err)
	assert.Nil(t, model.Dropoff, "unset optional columns stay NULL")
	assert.Nil(t, model.ApproachRoute)

	back, err := toDomainRide(model)
	require.NoError(t, err)
	assert.Equal(t, rd.Snapshot(), back.Snapshot())

	require.NoError(t, rd.Accept(uuid.New()))
	_, err = rd.RecordDriverPosition(address.Coordinate{Latitude: 51.51, Longitude: -0.14}, 30)
	require.NoError(t, err)
	require.NoError(t, rd.StartTrip(address.AddressCandidate{
		DisplayText: "Paris, 75001",
		Coordinate:  address.Coordinate{Latitude: 48.8566, Longitude: 2.3522},
	}, 30))

	model, err = toRideModel(rd)
	require.NoError(t, err)
	back, err = toDomainRide(model)
	require.NoError(t, err)

	assert.Equal(t, rd.Snapshot().Dropoff, back.Snapshot().Dropoff)
	assert.Equal(t, rd.Snapshot().TripRoute, back.Snapshot().TripRoute)
	assert.Equal(t, rd.Snapshot().ApproachRoute, back.Snapshot().ApproachRoute)
	assert.Equal(t, rd.Snapshot().DriverPosition, back.Snapshot().DriverPosition)
}

func TestToDomainRide_RejectsUnknownStatus(t *testing.T) {
	model := &RideModel{
		ID:     uuid.New(),
		Status: "teleported",
		Pickup: []byte(`{"display_text":"x","coordinate":{"latitude":1,"longitude":2}}`),
	}
	_, err := toDomainRide(model)
	assert.Error(t, err)
}
