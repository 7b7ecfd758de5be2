// Package lifecycle implements the request status state machine: forward-only
// through pending → approved → in-progress → completed, with cancellation
// allowed from any non-terminal state.
package lifecycle

import (
	"github.com/facilitydesk/backend/pkg/apperr"
)

// Status of a request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// order maps each forward state to its position; terminal/cancelled excluded.
var order = map[Status]int{
	StatusPending:    0,
	StatusApproved:   1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := order[s]
	return ok
}

// Terminal reports whether no further transitions exist from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether a transition from current to target is legal.
// Legal moves are exactly one step forward, or to cancelled from any
// non-terminal state. Resubmitting the current status is a rejected no-op.
func CanTransition(current, target Status) bool {
	if !current.Valid() || !target.Valid() || current == target {
		return false
	}
	if current.Terminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return order[target] == order[current]+1
}

// Transition validates the move and returns a typed policy error naming both
// states when it is illegal.
func Transition(current, target Status) error {
	if !target.Valid() {
		return apperr.Validation("status", "unknown status "+string(target))
	}
	if !CanTransition(current, target) {
		return apperr.Policyf("illegal status transition from %q to %q", current, target)
	}
	return nil
}
