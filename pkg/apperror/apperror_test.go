package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidation_WrappedStillDetected(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Validation("email", "email is required"))

	assert.True(t, IsValidation(err))
	assert.Equal(t, "email is required", UserMessage(err))
	assert.Equal(t, "checkout: email: email is required", err.Error())
}

func TestValidation_OtherErrors(t *testing.T) {
	err := errors.New("disk on fire")

	assert.False(t, IsValidation(err))
	assert.Empty(t, UserMessage(err))
	assert.Equal(t, "no field", Validation("", "no field").Error())
}
