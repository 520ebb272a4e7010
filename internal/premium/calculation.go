package premium

import (
	"time"

	"github.com/shopspring/decimal"

	id "protekt/pkg/domain"
)

// moneyPlaces is the scale of every persisted monetary amount.
const moneyPlaces = 2

// Calculation is one immutable premium breakdown. Records are appended to a
// policy's history and never changed afterwards.
//
// Monetary amounts are rounded half-up to two places. Rates and BaseAmount are
// kept exactly as used.
type Calculation struct {
	ID           id.CalculationID    `json:"id"`
	PolicyID     id.PolicyID         `json:"policy_id"`
	Method       Method              `json:"calculation_method"`
	BaseAmount   decimal.Decimal     `json:"base_amount"`
	PremiumRate  decimal.Decimal     `json:"premium_rate"`
	GrossPremium decimal.Decimal     `json:"gross_premium"`
	TaxRate      decimal.NullDecimal `json:"tax_rate"`
	TaxAmount    decimal.NullDecimal `json:"tax_amount"`
	LevyRate     decimal.NullDecimal `json:"levy_rate"`
	LevyAmount   decimal.NullDecimal `json:"levy_amount"`
	AdminFeeRate decimal.NullDecimal `json:"admin_fee_rate"`
	AdminFee     decimal.NullDecimal `json:"admin_fee_amount"`
	NetPremium   decimal.NullDecimal `json:"net_premium"`
	TotalPremium decimal.Decimal     `json:"total_premium"`
	ProviderRef  *string             `json:"provider_calculation_ref,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Stamp assigns the identity fields once the caller is ready to persist.
func (c *Calculation) Stamp(calcID id.CalculationID, policyID id.PolicyID, now time.Time) {
	c.ID = calcID
	c.PolicyID = policyID
	c.CreatedAt = now
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

func nullMoney(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(roundMoney(d))
}
