package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodeConflict, "loan already insured")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("create policy: %w", New(CodeNotFound, "loan not found"))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("nil and plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "upload document")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Equal(t, "upload document: connection refused", err.Error())
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("unclassified")))
	assert.Equal(t, CodeValidation, CodeOf(Newf(CodeValidation, "unknown status %q", "DONE")))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil, CodeUnavailable, "save"))

	classified := New(CodeConflict, "loan already insured")
	assert.Same(t, classified, Classify(classified, CodeUnavailable, "save"))

	err := Classify(errors.New("connection reset"), CodeUnavailable, "save policy")
	assert.Equal(t, CodeUnavailable, CodeOf(err))
}
