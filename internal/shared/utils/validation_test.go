package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinora/internal/shared/errors"
)

func TestBindingErrorTranslatesFieldErrors(t *testing.T) {
	type form struct {
		Name string `validate:"required,max=100"`
		Tier string `validate:"oneof=FREE PAID"`
	}

	err := validator.New().Struct(form{Tier: "GOLD"})
	require.Error(t, err)

	appErr := BindingError(err)
	require.True(t, errors.IsAppError(appErr))
	assert.Contains(t, appErr.Error(), "validation failed")
}

func TestBindingErrorFallsBackOnNonValidatorError(t *testing.T) {
	appErr := BindingError(assert.AnError)
	require.True(t, errors.IsAppError(appErr))
	assert.Contains(t, appErr.Error(), "invalid request body")
}
