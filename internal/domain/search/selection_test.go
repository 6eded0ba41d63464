package search

import (
	"errors"
	"sync"
	"testing"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(texts ...string) []address.AddressCandidate {
	list := make([]address.AddressCandidate, len(texts))
	for i, text := range texts {
		list[i] = address.AddressCandidate{
			DisplayText: text,
			Coordinate:  address.Coordinate{Latitude: float64(i), Longitude: float64(-i)},
		}
	}
	return list
}

func TestSelectionState_StartsEmpty(t *testing.T) {
	s := NewSelectionState()

	_, ok := s.CurrentSelection()
	assert.False(t, ok)
	assert.False(t, s.IsDestinationReady())
}

func TestSelectionState_SelectValidIndex(t *testing.T) {
	s := NewSelectionState()
	list := candidates("A", "B", "C")
	s.ReplaceCandidates(list)

	require.NoError(t, s.Select(1))

	got, ok := s.CurrentSelection()
	require.True(t, ok)
	assert.Equal(t, list[1], got)
	assert.True(t, s.IsDestinationReady())
}

func TestSelectionState_SelectOutOfRange(t *testing.T) {
	s := NewSelectionState()
	s.ReplaceCandidates(candidates("A", "B", "C"))

	for _, idx := range []int{5, 3, -1} {
		err := s.Select(idx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutOfRange))

		var selErr *SelectionError
		require.ErrorAs(t, err, &selErr)
		assert.Equal(t, idx, selErr.Index)
		assert.Equal(t, 3, selErr.Length)
	}

	assert.False(t, s.IsDestinationReady())
	_, ok := s.CurrentSelection()
	assert.False(t, ok)
}

func TestSelectionState_FailedSelectKeepsPreviousSelection(t *testing.T) {
	s := NewSelectionState()
	list := candidates("A", "B")
	s.ReplaceCandidates(list)
	require.NoError(t, s.Select(0))

	require.ErrorIs(t, s.Select(2), ErrOutOfRange)

	got, ok := s.CurrentSelection()
	require.True(t, ok)
	assert.Equal(t, list[0], got)
}

func TestSelectionState_SelectOnEmptyList(t *testing.T) {
	s := NewSelectionState()
	assert.ErrorIs(t, s.Select(0), ErrOutOfRange)
}

func TestSelectionState_ReplaceResetsSelection(t *testing.T) {
	s := NewSelectionState()
	s.ReplaceCandidates(candidates("A", "B"))
	require.NoError(t, s.Select(1))

	s.ReplaceCandidates(candidates("C"))

	assert.False(t, s.IsDestinationReady())
	_, ok := s.CurrentSelection()
	assert.False(t, ok)
}

func TestSelectionState_ReplaceAlwaysClearsReadiness(t *testing.T) {
	s := NewSelectionState()
	s.ReplaceCandidates(nil)
	assert.False(t, s.IsDestinationReady())

	s.ReplaceCandidates(candidates("A"))
	assert.False(t, s.IsDestinationReady(), "a non-empty list without a pick is not ready")
}

func TestSelectionState_SelectIsIdempotent(t *testing.T) {
	s := NewSelectionState()
	s.ReplaceCandidates(candidates("A", "B", "C"))

	require.NoError(t, s.Select(2))
	once := s.Snapshot()
	require.NoError(t, s.Select(2))
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
}

func TestSelectionState_CopiesInputList(t *testing.T) {
	s := NewSelectionState()
	list := candidates("A")
	s.ReplaceCandidates(list)
	list[0].DisplayText = "mutated"

	require.NoError(t, s.Select(0))
	got, _ := s.CurrentSelection()
	assert.Equal(t, "A", got.DisplayText)
}

func TestSelectionState_SnapshotIsConsistentUnderConcurrency(t *testing.T) {
	s := NewSelectionState()
	short := candidates("A")
	long := candidates("A", "B", "C", "D")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				s.ReplaceCandidates(long)
				_ = s.Select(3)
			} else {
				s.ReplaceCandidates(short)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			snap := s.Snapshot()
			if snap.SelectedIndex != nil {
				assert.Less(t, *snap.SelectedIndex, len(snap.Candidates))
			}
		}
	}()
	wg.Wait()
}
