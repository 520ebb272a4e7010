package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "protekt/pkg/domain-errors"
)

type request struct {
	Name    string  `validate:"required"`
	Count   int64   `validate:"gt=0"`
	Percent *string `validate:"omitempty,numeric"`
}

func TestStruct(t *testing.T) {
	pct := "2.5"
	require.NoError(t, Struct(request{Name: "a", Count: 1, Percent: &pct}))
	require.NoError(t, Struct(request{Name: "a", Count: 1}))

	bad := "five"
	err := Struct(request{Count: 0, Percent: &bad})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "Name is required")
	assert.Contains(t, err.Error(), "Count must be greater than 0")
	assert.Contains(t, err.Error(), "Percent must be numeric")
}
