package search

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
)

// Query is a free-text place search, optionally biased towards a point.
type Query struct {
	Text string
	Near *address.Coordinate
}

// Provider resolves free-text queries into raw place records.
type Provider interface {
	// Search returns matching places in relevance order, or ErrNoResults when
	// nothing matched.
	Search(ctx context.Context, q Query) ([]address.PlaceCandidate, error)
}
