package application

import (
	"context"
	"sort"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	rideDomain "github.com/Kilat-Pet-Delivery/service-ride/internal/domain/ride"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/search"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/kafka"
	"github.com/google/uuid"
)

type memoryRideRepo struct {
	mu    sync.Mutex
	rides map[uuid.UUID]rideDomain.Snapshot
}

func newMemoryRideRepo() *memoryRideRepo {
	return &memoryRideRepo{rides: make(map[uuid.UUID]rideDomain.Snapshot)}
}

func (r *memoryRideRepo) FindByID(_ context.Context, id uuid.UUID) (*rideDomain.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rides[id]
	if !ok {
		return nil, apperr.NewNotFoundError("Ride", id.String())
	}
	return rideDomain.Reconstruct(s), nil
}

func (r *memoryRideRepo) FindByNumber(_ context.Context, number string) (*rideDomain.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rides {
		if s.RideNumber == number {
			return rideDomain.Reconstruct(s), nil
		}
	}
	return nil, apperr.NewNotFoundError("Ride", number)
}

func (r *memoryRideRepo) filter(keep func(rideDomain.Snapshot) bool, page, limit int) ([]*rideDomain.Ride, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []rideDomain.Snapshot
	for _, s := range r.rides {
		if keep(s) {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]*rideDomain.Ride, 0, end-start)
	for _, s := range matched[start:end] {
		out = append(out, rideDomain.Reconstruct(s))
	}
	return out, total, nil
}

func (r *memoryRideRepo) FindByRiderID(_ context.Context, riderID uuid.UUID, page, limit int) ([]*rideDomain.Ride, int64, error) {
	return r.filter(func(s rideDomain.Snapshot) bool { return s.RiderID == riderID }, page, limit)
}

func (r *memoryRideRepo) FindByDriverID(_ context.Context, driverID uuid.UUID, page, limit int) ([]*rideDomain.Ride, int64, error) {
	return r.filter(func(s rideDomain.Snapshot) bool { return s.DriverID != nil && *s.DriverID == driverID }, page, limit)
}

func (r *memoryRideRepo) ListAll(_ context.Context, page, limit int) ([]*rideDomain.Ride, int64, error) {
	return r.filter(func(rideDomain.Snapshot) bool { return true }, page, limit)
}

func (r *memoryRideRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, s := range r.rides {
		counts[string(s.Status)]++
	}
	return counts, nil
}

func (r *memoryRideRepo) Save(_ context.Context, rd *rideDomain.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rides[rd.ID()] = rd.Snapshot()
	return nil
}

func (r *memoryRideRepo) Update(_ context.Context, rd *rideDomain.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rides[rd.ID()]
	if !ok {
		return apperr.NewNotFoundError("Ride", rd.ID().String())
	}
	if stored.Version != rd.Version()-1 {
		return apperr.NewConflictError("ride was modified by another transaction")
	}
	r.rides[rd.ID()] = rd.Snapshot()
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	topics []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// stubProvider answers every search with places or err, and records queries.
type stubProvider struct {
	mu      sync.Mutex
	places  []address.PlaceCandidate
	err     error
	queries []search.Query
	// hook runs before the response is returned.
	hook func()
}

func (p *stubProvider) Search(_ context.Context, q search.Query) ([]address.PlaceCandidate, error) {
	p.mu.Lock()
	p.queries = append(p.queries, q)
	places, err, hook := p.places, p.err, p.hook
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
	return places, err
}
