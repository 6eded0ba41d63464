package search

import (
	"sync"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
)

const noSelection = -1

// SelectionState tracks the candidate list of one destination search and which
// candidate, if any, is picked.
//
// The candidate list and the selected index are guarded by the same lock, so a
// reader never sees a new list paired with a stale selection.
type SelectionState struct {
	mu         sync.RWMutex
	candidates []address.AddressCandidate
	selected   int
}

// NewSelectionState returns an empty state with no selection.
func NewSelectionState() *SelectionState {
	return &SelectionState{selected: noSelection}
}

// ReplaceCandidates swaps in a new candidate list and clears the selection.
func (s *SelectionState) ReplaceCandidates(candidates []address.AddressCandidate) {
	list := make([]address.AddressCandidate, len(candidates))
	copy(list, candidates)

	s.mu.Lock()
	s.candidates = list
	s.selected = noSelection
	s.mu.Unlock()
}

// Select picks the candidate at index. It fails with ErrOutOfRange when the
// index does not exist in the current list and leaves the state unchanged.
func (s *SelectionState) Select(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.candidates) {
		return &SelectionError{Index: index, Length: len(s.candidates), Err: ErrOutOfRange}
	}
	s.selected = index
	return nil
}

// CurrentSelection returns the picked candidate.
func (s *SelectionState) CurrentSelection() (address.AddressCandidate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == noSelection {
		return address.AddressCandidate{}, false
	}
	return s.candidates[s.selected], true
}

// IsDestinationReady reports whether a candidate has been picked. A non-empty
// list without a selection is not ready.
func (s *SelectionState) IsDestinationReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected != noSelection
}

// Snapshot is a consistent view of a SelectionState.
type Snapshot struct {
	Candidates    []address.AddressCandidate
	SelectedIndex *int
}

// Snapshot copies the candidates and selection under a single read lock.
func (s *SelectionState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]address.AddressCandidate, len(s.candidates))
	copy(list, s.candidates)

	snap := Snapshot{Candidates: list}
	if s.selected != noSelection {
		idx := s.selected
		snap.SelectedIndex = &idx
	}
	return snap
}
