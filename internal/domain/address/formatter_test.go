package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		place PlaceCandidate
		want  string
	}{
		{
			name:  "house number street and locality",
			place: PlaceCandidate{SubStreet: "221", Street: "Baker St", Locality: "London"},
			want:  "221 Baker St, London",
		},
		{
			name:  "locality and postal code only",
			place: PlaceCandidate{Locality: "Paris", PostalCode: "75001"},
			want:  "Paris, 75001",
		},
		{
			name: "all fields",
			place: PlaceCandidate{
				SubStreet:          "1",
				Street:             "Infinite Loop",
				Locality:           "Cupertino",
				AdministrativeArea: "CA",
				PostalCode:         "95014",
			},
			want: "1 Infinite Loop, Cupertino, CA, 95014",
		},
		{
			name:  "street without house number",
			place: PlaceCandidate{Street: "Market St", AdministrativeArea: "CA"},
			want:  "Market St, CA",
		},
		{
			name:  "house number without street",
			place: PlaceCandidate{SubStreet: "221", Locality: "London"},
			want:  "221, London",
		},
		{
			name:  "postal code only",
			place: PlaceCandidate{PostalCode: "10115"},
			want:  "10115",
		},
		{
			name:  "blank fields are absent",
			place: PlaceCandidate{SubStreet: "  ", Street: "Baker St", Locality: "", PostalCode: " NW1 "},
			want:  "Baker St, NW1",
		},
		{
			name:  "no usable fields",
			place: PlaceCandidate{Coordinate: Coordinate{Latitude: 51.5, Longitude: -0.1}},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.place))
		})
	}
}

func TestFormat_KeepsPriorityOrderWithoutDoubleSeparators(t *testing.T) {
	place := PlaceCandidate{Street: "Rue de Rivoli", AdministrativeArea: "Île-de-France", PostalCode: "75001"}

	got := Format(place)

	assert.NotContains(t, got, ", ,")
	assert.False(t, strings.HasPrefix(got, ","))
	assert.False(t, strings.HasSuffix(got, ", "))
	assert.Less(t, strings.Index(got, "Rue de Rivoli"), strings.Index(got, "Île-de-France"))
	assert.Less(t, strings.Index(got, "Île-de-France"), strings.Index(got, "75001"))
}

func TestFormatBatch_PreservesOrderAndCoordinates(t *testing.T) {
	places := []PlaceCandidate{
		{Street: "Baker St", Coordinate: Coordinate{Latitude: 51.5237, Longitude: -0.1585}},
		{Coordinate: Coordinate{Latitude: 1, Longitude: 2}},
		{Locality: "Paris", Coordinate: Coordinate{Latitude: 48.8566, Longitude: 2.3522}},
		{Street: "Baker St", Coordinate: Coordinate{Latitude: 51.5237, Longitude: -0.1585}},
	}

	got := FormatBatch(places)

	require.Len(t, got, len(places))
	for i := range places {
		assert.Equal(t, places[i].Coordinate, got[i].Coordinate)
		assert.Equal(t, Format(places[i]), got[i].DisplayText)
	}
	assert.Equal(t, "", got[1].DisplayText)
	assert.Equal(t, got[0], got[3], "duplicates are kept")
}

func TestFormatBatch_Empty(t *testing.T) {
	assert.Empty(t, FormatBatch(nil))
}
