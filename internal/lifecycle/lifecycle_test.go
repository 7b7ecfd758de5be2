package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/backend/pkg/apperr"
)

func TestForwardPath(t *testing.T) {
	path := []Status{StatusPending, StatusApproved, StatusInProgress, StatusCompleted}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, Transition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestSkippingForwardStatesRejected(t *testing.T) {
	assert.Error(t, Transition(StatusPending, StatusInProgress))
	assert.Error(t, Transition(StatusPending, StatusCompleted))
	assert.Error(t, Transition(StatusApproved, StatusCompleted))
}

func TestBackwardRejected(t *testing.T) {
	assert.Error(t, Transition(StatusCompleted, StatusInProgress))
	assert.Error(t, Transition(StatusCompleted, StatusPending))
	assert.Error(t, Transition(StatusInProgress, StatusApproved))
	assert.Error(t, Transition(StatusApproved, StatusPending))
}

func TestCancelReachability(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusInProgress} {
		assert.NoError(t, Transition(s, StatusCancelled), "cancel from %s", s)
	}
	assert.Error(t, Transition(StatusCompleted, StatusCancelled))
	assert.Error(t, Transition(StatusCancelled, StatusCancelled))
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	targets := []Status{StatusPending, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled}
	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		for _, target := range targets {
			assert.False(t, CanTransition(terminal, target), "%s -> %s", terminal, target)
		}
	}
}

func TestSameStatusIsRejectedNoOp(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusInProgress} {
		err := Transition(s, s)
		require.Error(t, err)
		assert.True(t, apperr.IsPolicy(err))
	}
}

func TestIllegalTransitionErrorNamesBothStates(t *testing.T) {
	err := Transition(StatusCompleted, StatusPending)
	require.Error(t, err)
	assert.True(t, apperr.IsPolicy(err))
	assert.Contains(t, err.Error(), "completed")
	assert.Contains(t, err.Error(), "pending")
}

func TestUnknownStatusIsValidationError(t *testing.T) {
	err := Transition(StatusPending, Status("archived"))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}
