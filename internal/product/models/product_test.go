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

func validSpec() ProductSpec {
	return ProductSpec{
		Provider:        "Hollard",
		Name:            "Credit Life",
		BeneficiaryType: BeneficiaryFanaka,
		Duration:        Duration{Value: 12, Unit: DurationMonths},
		Method:          "hollard_standard",
		Properties:      []premium.Property{{Key: premium.KeyPremiumRate, Value: "0.005"}},
	}
}

func TestNewProduct(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("builds rate table once from properties", func(t *testing.T) {
		p, err := NewProduct(id.ProductID(uuid.New()), validSpec(), now)
		require.NoError(t, err)
		assert.Equal(t, premium.MethodHollard, p.Method)
		assert.True(t, decimal.RequireFromString("0.005").Equal(p.Rates.PremiumRate))
		assert.True(t, decimal.RequireFromString("0.05").Equal(p.Rates.LevyRate))
	})

	t.Run("rejects invalid attributes", func(t *testing.T) {
		cases := map[string]func(*ProductSpec){
			"blank name":          func(s *ProductSpec) { s.Name = "  " },
			"unknown beneficiary": func(s *ProductSpec) { s.BeneficiaryType = "BANK" },
			"zero duration":       func(s *ProductSpec) { s.Duration.Value = 0 },
			"unknown unit":        func(s *ProductSpec) { s.Duration.Unit = "DECADES" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				spec := validSpec()
				mutate(&spec)
				_, err := NewProduct(id.ProductID(uuid.New()), spec, now)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			})
		}
	})
}

func TestDuration_AddTo(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start.AddDate(0, 0, 10), Duration{Value: 10, Unit: DurationDays}.AddTo(start))
	assert.Equal(t, start.AddDate(0, 0, 14), Duration{Value: 2, Unit: DurationWeeks}.AddTo(start))
	assert.Equal(t, start.AddDate(0, 6, 0), Duration{Value: 6, Unit: DurationMonths}.AddTo(start))
	assert.Equal(t, start.AddDate(1, 0, 0), Duration{Value: 1, Unit: DurationYears}.AddTo(start))
}
