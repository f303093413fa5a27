package errdef_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/asianpilots/volunteer-manager/internal/errdef"

	"github.com/stretchr/testify/assert"
)

func TestIsForbidden(t *testing.T) {
	assert.False(t, errdef.IsForbidden(errors.New("some error")))
	assert.True(t, errdef.IsForbidden(errdef.NewForbidden("some error")))
}

func TestIsBadRequest(t *testing.T) {
	assert.False(t, errdef.IsBadRequest(errors.New("some error")))
	assert.True(t, errdef.IsBadRequest(errdef.NewBadRequest("some error")))
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, errdef.IsDuplicated(errors.New("some error")))
	assert.True(t, errdef.IsDuplicated(errdef.NewDuplicated("some error")))
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, errdef.IsUnauthorized(errors.New("some error")))
	assert.True(t, errdef.IsUnauthorized(errdef.NewUnauthorized("some error")))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, errdef.IsNotFound(errors.New("some error")))
	assert.True(t, errdef.IsNotFound(errdef.NewNotFound("some error")))
}

func TestIsConflict(t *testing.T) {
	assert.False(t, errdef.IsConflict(errors.New("some error")))
	assert.True(t, errdef.IsConflict(errdef.NewConflict("some error")))
}

func TestIsServiceUnavailable(t *testing.T) {
	assert.False(t, errdef.IsServiceUnavailable(errors.New("some error")))
	assert.True(t, errdef.IsServiceUnavailable(errdef.NewServiceUnavailable("some error")))
}

func TestIsUpstream(t *testing.T) {
	assert.False(t, errdef.IsUpstream(errors.New("some error")))
	assert.True(t, errdef.IsUpstream(errdef.NewUpstream("Invalid API key.")))
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	err := fmt.Errorf("signing up: %w", errdef.NewDuplicated("You are already signed up for this event."))

	assert.True(t, errdef.IsDuplicated(err))
	assert.False(t, errdef.IsNotFound(err))
	assert.Equal(t, "signing up: You are already signed up for this event.", err.Error())
}
