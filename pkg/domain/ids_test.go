package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "protekt/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePolicyID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePolicyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePolicyID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParsePolicyID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, PolicyID(validUUID), id)
	})
}

func TestParseNumericIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"plain", "42", 42, false},
		{"surrounding whitespace", " 7 ", 7, false},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"empty", "", 0, true},
		{"SQL injection attempt", "1; DROP TABLE policies;--", 0, true},
		{"oversized input", strings.Repeat("9", 40), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loanID, loanErr := ParseLoanID(tt.input)
			memberID, memberErr := ParseMemberID(tt.input)
			if tt.wantErr {
				require.Error(t, loanErr)
				require.Error(t, memberErr)
				assert.True(t, dErrors.HasCode(loanErr, dErrors.CodeValidation))
				return
			}
			require.NoError(t, loanErr)
			require.NoError(t, memberErr)
			assert.Equal(t, LoanID(tt.want), loanID)
			assert.Equal(t, MemberID(tt.want), memberID)
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all UUID ID types parse identically.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errProduct := ParseProductID(validUUID)
		_, errPolicy := ParsePolicyID(validUUID)
		_, errCustomer := ParseCustomerID(validUUID)
		_, errDocument := ParseDocumentID(validUUID)
		_, errClaim := ParseClaimID(validUUID)

		require.NoError(t, errProduct)
		require.NoError(t, errPolicy)
		require.NoError(t, errCustomer)
		require.NoError(t, errDocument)
		require.NoError(t, errClaim)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errProduct := ParseProductID(input)
			_, errPolicy := ParsePolicyID(input)
			_, errCustomer := ParseCustomerID(input)
			_, errDocument := ParseDocumentID(input)
			_, errClaim := ParseClaimID(input)

			require.Error(t, errProduct)
			require.Error(t, errPolicy)
			require.Error(t, errCustomer)
			require.Error(t, errDocument)
			require.Error(t, errClaim)
		})
	}
}
