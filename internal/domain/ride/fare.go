package ride

import "fmt"

// DefaultCurrency is the currency rides are priced in unless configured otherwise.
const DefaultCurrency = "USD"

// FareStrategy defines the interface for calculating ride fares.
type FareStrategy interface {
	// Calculate returns the fare in cents for the given parameters.
	Calculate(params FareParams) (int64, error)
}

// FareParams holds the inputs for fare calculation.
type FareParams struct {
	DistanceKm  float64
	DurationMin int
}

// StandardFareStrategy charges a base fare plus distance and time components,
// never less than the minimum fare.
type StandardFareStrategy struct {
	BaseCents      int64
	PerKmCents     int64
	PerMinuteCents int64
	MinimumCents   int64
}

// NewStandardFareStrategy creates a StandardFareStrategy with the default tariff.
//
// Tariff:
//   - Base fare: 2.50
//   - Distance: 1.75/km
//   - Time: 0.30/min
//   - Minimum fare: 7.00
func NewStandardFareStrategy() *StandardFareStrategy {
	return &StandardFareStrategy{
		BaseCents:      250,
		PerKmCents:     175,
		PerMinuteCents: 30,
		MinimumCents:   700,
	}
}

// Calculate computes the fare in cents.
func (s *StandardFareStrategy) Calculate(params FareParams) (int64, error) {
	if params.DistanceKm < 0 {
		return 0, fmt.Errorf("distance cannot be negative")
	}
	if params.DurationMin < 0 {
		return 0, fmt.Errorf("duration cannot be negative")
	}

	total := s.BaseCents
	total += int64(params.DistanceKm * float64(s.PerKmCents))
	total += int64(params.DurationMin) * s.PerMinuteCents

	if total < s.MinimumCents {
		total = s.MinimumCents
	}
	return total, nil
}
