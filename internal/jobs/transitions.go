package jobs

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is matched by every *TransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError names both ends of a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// transitions is the complete table of legal status changes. A status absent
// from the keys has no outgoing transitions.
var transitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusCancelled, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusFailed:     {StatusQueued},
	StatusCancelled:  {StatusQueued},
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from the given one.
func AllowedTransitions(from Status) []Status {
	return append([]Status(nil), transitions[from]...)
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status Status) bool {
	return status.Valid() && len(transitions[status]) == 0
}

// CheckTransition returns a *TransitionError when the change is not allowed.
func CheckTransition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return &TransitionError{From: from, To: to}
}
