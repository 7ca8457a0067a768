package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Endpoint string   `validate:"required,url"`
	Owner    string   `validate:"required"`
	Kinds    []string `validate:"required,min=1"`
}

func TestValidate(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		err := Validate(registration{
			Endpoint: "https://example.com/hook",
			Owner:    "ops@example.com",
			Kinds:    []string{"ADA_RECEIVED"},
		})
		assert.NoError(t, err)
	})

	t.Run("missing required fields fail with the sentinel", func(t *testing.T) {
		err := Validate(registration{})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, err.Error(), "Endpoint")
		assert.Contains(t, err.Error(), "Owner")
	})

	t.Run("malformed url fails", func(t *testing.T) {
		err := Validate(registration{
			Endpoint: "not a url",
			Owner:    "ops@example.com",
			Kinds:    []string{"ADA_RECEIVED"},
		})

		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, err.Error(), "url")
	})

	t.Run("empty slice fails min rule", func(t *testing.T) {
		err := Validate(registration{
			Endpoint: "https://example.com/hook",
			Owner:    "ops@example.com",
			Kinds:    []string{},
		})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}
