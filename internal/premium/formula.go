package premium

import (
	"strconv"

	"github.com/shopspring/decimal"

	dErrors "protekt/pkg/domain-errors"
)

var hundred = decimal.NewFromInt(100)

const (
	defaultPercentage = "0.01"
	defaultLoanAmount = "0"
)

// Input is everything a formula may read. SumAssured is the loan principal;
// LoanAmount and PremiumPercentage are the string fields stored on the policy.
type Input struct {
	Method            Method
	Rates             RateTable
	SumAssured        decimal.Decimal
	LoanAmount        string
	PremiumPercentage string
}

// Formula prices cover for one calculation method.
type Formula interface {
	Method() Method
	Calculate(in Input) (*Calculation, error)
}

// hollardFormula cascades levy and admin fee deductions off the gross premium.
// Intermediate values stay unrounded; only the recorded amounts are rounded.
type hollardFormula struct{}

func (hollardFormula) Method() Method { return MethodHollard }

func (hollardFormula) Calculate(in Input) (*Calculation, error) {
	base := in.SumAssured
	gross := base.Mul(in.Rates.PremiumRate)
	levy := gross.Mul(in.Rates.LevyRate)
	netIPL := gross.Sub(levy)
	adminFee := netIPL.Mul(in.Rates.AdminFeeRate)
	total := netIPL.Sub(adminFee)

	return &Calculation{
		Method:       MethodHollard,
		BaseAmount:   base,
		PremiumRate:  in.Rates.PremiumRate,
		GrossPremium: roundMoney(gross),
		LevyRate:     decimal.NewNullDecimal(in.Rates.LevyRate),
		LevyAmount:   nullMoney(levy),
		AdminFeeRate: decimal.NewNullDecimal(in.Rates.AdminFeeRate),
		AdminFee:     nullMoney(adminFee),
		NetPremium:   nullMoney(netIPL),
		TotalPremium: roundMoney(total),
	}, nil
}

// turacoFormula is a flat rate on the stored loan amount.
type turacoFormula struct{}

func (turacoFormula) Method() Method { return MethodTuraco }

func (turacoFormula) Calculate(in Input) (*Calculation, error) {
	base, err := parseAmount(in.LoanAmount, defaultLoanAmount, "loan amount")
	if err != nil {
		return nil, err
	}
	premium := roundMoney(base.Mul(in.Rates.PremiumRate))
	return &Calculation{
		Method:       MethodTuraco,
		BaseAmount:   base,
		PremiumRate:  in.Rates.PremiumRate,
		GrossPremium: premium,
		TotalPremium: premium,
	}, nil
}

// internalFormula applies the policy's own premium percentage. PremiumRate is
// recorded as the percentage, not the fraction, so mirroring it back onto the
// policy leaves the policy's percentage unchanged.
type internalFormula struct{}

func (internalFormula) Method() Method { return MethodInternal }

func (internalFormula) Calculate(in Input) (*Calculation, error) {
	base, err := parseAmount(in.LoanAmount, defaultLoanAmount, "loan amount")
	if err != nil {
		return nil, err
	}
	pct, err := parseAmount(in.PremiumPercentage, defaultPercentage, "premium percentage")
	if err != nil {
		return nil, err
	}
	premium := roundMoney(base.Mul(pct.Div(hundred)))
	return &Calculation{
		Method:       MethodInternal,
		BaseAmount:   base,
		PremiumRate:  pct,
		GrossPremium: premium,
		TotalPremium: premium,
	}, nil
}

// parseAmount substitutes def only when raw is empty. A present but malformed
// value is a calculation error.
func parseAmount(raw, def, field string) (decimal.Decimal, error) {
	if raw == "" {
		raw = def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, dErrors.Wrap(err, dErrors.CodeCalculation, "invalid "+field+" "+strconv.Quote(raw))
	}
	return d, nil
}
