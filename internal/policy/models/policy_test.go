package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protekt/internal/premium"
	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

func TestSimplePremium(t *testing.T) {
	cases := []struct {
		amount, pct, want string
	}{
		{"100000", "5", "5000.0"},
		{"100000.00000000", "5", "5000.0"},
		{"12345", "2.5", "308.625"},
		{"1000", "0.01", "0.1"},
		{"0", "5", "0.0"},
	}
	for _, tc := range cases {
		got, err := SimplePremium(tc.amount, tc.pct)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s%% of %s", tc.pct, tc.amount)
	}

	_, err := SimplePremium("100000", "five")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCalculation))
}

func TestPolicy_Lifecycle(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -1)
	end := start.AddDate(0, 6, 0)

	p, err := NewPolicy(id.PolicyID(uuid.New()), Binding{
		ProductID:  id.ProductID(uuid.New()),
		CustomerID: id.CustomerID(uuid.New()),
		LoanID:     42,
		LoanAmount: decimal.RequireFromString("100000.00"),
		Start:      &start,
		End:        &end,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "100000", p.LoanAmount)
	assert.Empty(t, p.PremiumValue)

	calc := &premium.Calculation{
		PremiumRate:  decimal.RequireFromString("0.0045"),
		TotalPremium: decimal.RequireFromString("320.63"),
	}
	p.ApplyCalculation(calc, now)
	assert.Equal(t, "320.63", p.PremiumValue)
	assert.Equal(t, "0.0045", p.PremiumPercentage)
	assert.Len(t, p.Calculations, 1)

	_, err = NewPolicy(id.PolicyID(uuid.New()), Binding{}, now)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
