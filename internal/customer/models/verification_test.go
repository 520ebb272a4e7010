package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"verified", "VERIFIED", " Verified "} {
		st, ok := ParseStatus(in)
		require.True(t, ok, in)
		assert.Equal(t, StatusVerified, st)
	}
	_, ok := ParseStatus("APPROVED")
	assert.False(t, ok)
}

func TestVerification_Transitions(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	_, v := NewCustomer(id.CustomerID(uuid.New()), id.VerificationID(uuid.New()), 3, now)
	require.Equal(t, StatusPending, v.Status)

	t.Run("same status compares case-insensitively", func(t *testing.T) {
		v.Status = "pending"
		err := v.CanChangeStatus(StatusPending)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("apply stamps the change", func(t *testing.T) {
		later := now.Add(time.Hour)
		require.NoError(t, v.CanChangeStatus(StatusSubmitted))
		v.ApplyStatus(StatusSubmitted, "docs in", later)
		assert.Equal(t, StatusSubmitted, v.Status)
		require.NotNil(t, v.StatusChangedAt)
		assert.Equal(t, later, *v.StatusChangedAt)
		assert.False(t, v.NeedsSubmission())
	})
}

func TestNewKycDocument(t *testing.T) {
	now := time.Now()
	_, v := NewCustomer(id.CustomerID(uuid.New()), id.VerificationID(uuid.New()), 3, now)

	doc, err := NewKycDocument(id.DocumentID(uuid.New()), v, id.FileID(uuid.New()), " huduma_card ", now)
	require.NoError(t, err)
	assert.Equal(t, DocumentHudumaCard, doc.DocumentType)
	assert.Equal(t, v.ID, doc.VerificationID)
	assert.Equal(t, v.CustomerID, doc.CustomerID)
	assert.False(t, doc.Verified)

	_, err = NewKycDocument(id.DocumentID(uuid.New()), v, id.FileID(uuid.New()), "   ", now)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
