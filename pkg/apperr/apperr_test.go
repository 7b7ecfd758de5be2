package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorCollectsFields(t *testing.T) {
	verr := &ValidationError{}
	assert.False(t, verr.HasErrors())

	verr.Add("event", "required").Add("event_date", "must be YYYY-MM-DD")
	assert.True(t, verr.HasErrors())
	assert.Len(t, verr.Fields, 2)
	assert.True(t, IsValidation(verr))
}

func TestPolicyErrorMessage(t *testing.T) {
	err := Policyf("cannot move from %s to %s", "completed", "pending")
	assert.Equal(t, "cannot move from completed to pending", err.Error())
	assert.True(t, IsPolicy(err))
	assert.False(t, IsNotFound(err))
}

func TestNotFoundThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load request: %w", NotFound("request"))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsPolicy(err))
}

func TestStorageErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("upload", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upload")
}
