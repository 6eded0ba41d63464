package application

import (
	"errors"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/search"
	"github.com/google/uuid"
)

var (
	errSearchSuperseded = errors.New("search superseded by a newer query")
	errStaleGeneration  = errors.New("candidate list has been replaced")
)

// destinationSession is the search state of one accepted ride. Every list
// replacement bumps generation; a select must quote the generation it was
// made against.
type destinationSession struct {
	mu         sync.Mutex
	state      *search.SelectionState
	generation uint64
	ticket     uint64
}

type sessionView struct {
	Generation uint64
	Snapshot   search.Snapshot
	Ready      bool
}

// begin registers a new search and returns its ticket. Only the response to
// the most recent ticket is applied.
func (s *destinationSession) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	return s.ticket
}

func (s *destinationSession) complete(ticket uint64, candidates []address.AddressCandidate) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.ticket {
		return s.generation, errSearchSuperseded
	}
	s.state.ReplaceCandidates(candidates)
	s.generation++
	return s.generation, nil
}

func (s *destinationSession) selectAt(generation uint64, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return errStaleGeneration
	}
	return s.state.Select(index)
}

func (s *destinationSession) view() sessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sessionView{
		Generation: s.generation,
		Snapshot:   s.state.Snapshot(),
		Ready:      s.state.IsDestinationReady(),
	}
}

// DestinationSessions holds one search session per ride for as long as the
// driver is choosing a drop-off.
type DestinationSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*destinationSession
}

// NewDestinationSessions creates an empty registry.
func NewDestinationSessions() *DestinationSessions {
	return &DestinationSessions{sessions: make(map[uuid.UUID]*destinationSession)}
}

func (d *DestinationSessions) getOrCreate(rideID uuid.UUID) *destinationSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[rideID]
	if !ok {
		s = &destinationSession{state: search.NewSelectionState()}
		d.sessions[rideID] = s
	}
	return s
}

func (d *DestinationSessions) get(rideID uuid.UUID) (*destinationSession, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[rideID]
	return s, ok
}

// Destination returns the picked drop-off for a ride, if one is ready.
func (d *DestinationSessions) Destination(rideID uuid.UUID) (address.AddressCandidate, bool) {
	s, ok := d.get(rideID)
	if !ok {
		return address.AddressCandidate{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentSelection()
}

// Release drops the session of a ride.
func (d *DestinationSessions) Release(rideID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, rideID)
}

// Len returns the number of open sessions.
func (d *DestinationSessions) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}
