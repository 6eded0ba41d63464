package search

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a selection refers to an index that does not
// exist in the current candidate list.
var ErrOutOfRange = errors.New("candidate index out of range")

// ErrNoResults is returned by providers when a query matched no place.
var ErrNoResults = errors.New("no address found which matches the provided address")

// SelectionError carries the rejected index and the list length it was checked against.
type SelectionError struct {
	Index  int
	Length int
	Err    error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("select candidate %d of %d: %v", e.Index, e.Length, e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }
