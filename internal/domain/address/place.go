package address

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceCandidate is a raw place record as returned by a geocoding provider.
// Empty string fields are treated as absent.
type PlaceCandidate struct {
	SubStreet          string     `json:"sub_street,omitempty"`
	Street             string     `json:"street,omitempty"`
	Locality           string     `json:"locality,omitempty"`
	AdministrativeArea string     `json:"administrative_area,omitempty"`
	PostalCode         string     `json:"postal_code,omitempty"`
	Coordinate         Coordinate `json:"coordinate"`
}

// AddressCandidate is a formatted, display-ready address paired with the
// coordinate of the place it was built from.
type AddressCandidate struct {
	DisplayText string     `json:"display_text"`
	Coordinate  Coordinate `json:"coordinate"`
}
