package ride

import "fmt"

// RideStatus represents the current state of a ride in its lifecycle.
type RideStatus string

const (
	StatusRequested  RideStatus = "requested"
	StatusAccepted   RideStatus = "accepted"
	StatusInProgress RideStatus = "in_progress"
	StatusCompleted  RideStatus = "completed"
	StatusCancelled  RideStatus = "cancelled"
)

// validTransitions defines the state machine for ride status transitions.
var validTransitions = map[RideStatus][]RideStatus{
	StatusRequested:  {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// IsValid returns true if the status is a recognized ride status.
func (s RideStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s RideStatus) CanTransitionTo(target RideStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s RideStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CanBeCancelled returns true if the ride can be cancelled from this status.
func (s RideStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

func (s RideStatus) String() string {
	return string(s)
}

// ParseRideStatus converts a string to a RideStatus, returning an error if invalid.
func ParseRideStatus(s string) (RideStatus, error) {
	status := RideStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ride status: %s", s)
	}
	return status, nil
}
