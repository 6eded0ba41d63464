package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/search"
	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "ride:geocode:"
	// geohash cells of this precision are roughly 5km wide.
	cacheGeohashPrecision = 5
)

// CachedProvider serves repeated queries from Redis. A query's Near point is
// snapped to the centre of its geohash cell before it reaches the wrapped
// provider, so every pickup in a cell shares one biased result set.
// Failures and empty answers are never cached.
type CachedProvider struct {
	next   search.Provider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProvider wraps next with a Redis cache.
func NewCachedProvider(next search.Provider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Search implements search.Provider.
func (c *CachedProvider) Search(ctx context.Context, q search.Query) ([]address.PlaceCandidate, error) {
	q = snapToCell(q)
	key := cacheKey(q)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var places []address.PlaceCandidate
		if jsonErr := json.Unmarshal(raw, &places); jsonErr == nil {
			return places, nil
		}
		c.logger.Warn("dropping unreadable geocode cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	}

	places, err := c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(places); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return places, nil
}

func cacheKey(q search.Query) string {
	cell := "-"
	if q.Near != nil {
		cell = geohash.EncodeWithPrecision(q.Near.Latitude, q.Near.Longitude, cacheGeohashPrecision)
	}
	text := strings.Join(strings.Fields(strings.ToLower(q.Text)), " ")
	return cacheKeyPrefix + cell + ":" + text
}

// snapToCell moves q.Near to the centre of its cache cell.
func snapToCell(q search.Query) search.Query {
	if q.Near == nil {
		return q
	}
	cell := geohash.EncodeWithPrecision(q.Near.Latitude, q.Near.Longitude, cacheGeohashPrecision)
	lat, lng := geohash.DecodeCenter(cell)
	q.Near = &address.Coordinate{Latitude: lat, Longitude: lng}
	return q
}
