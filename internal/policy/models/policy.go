// Package models holds insurance policies bound to loans.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"protekt/internal/premium"
	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

// Policy binds one loan to one product for one customer. A loan is bound by at
// most one policy, ever.
//
// LoanAmount, PremiumPercentage and PremiumValue are decimal strings; their
// exact text is part of the record.
type Policy struct {
	ID                id.PolicyID            `json:"id"`
	ProductID         id.ProductID           `json:"product_id"`
	CustomerID        id.CustomerID          `json:"customer_id"`
	LoanID            id.LoanID              `json:"loan_id"`
	LoanAmount        string                 `json:"loan_amount"`
	PremiumPercentage string                 `json:"premium_percentage"`
	PremiumValue      string                 `json:"premium_value"`
	PolicyStart       *time.Time             `json:"policy_start_date,omitempty"`
	PolicyEnd         *time.Time             `json:"policy_end_date,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	Calculations      []*premium.Calculation `json:"premium_calculations,omitempty"`
}

// Binding is what a policy is bound to, resolved from the loan and product.
type Binding struct {
	ProductID  id.ProductID
	CustomerID id.CustomerID
	LoanID     id.LoanID
	LoanAmount decimal.Decimal
	Start      *time.Time
	End        *time.Time
}

// NewPolicy builds a provisional policy with no premium yet.
func NewPolicy(policyID id.PolicyID, b Binding, now time.Time) (*Policy, error) {
	if b.LoanID <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy requires a loan")
	}
	p := &Policy{ID: policyID, CreatedAt: now}
	p.Rebind(b, now)
	return p, nil
}

// Rebind replaces the references, loan amount and cover window.
func (p *Policy) Rebind(b Binding, now time.Time) {
	p.ProductID = b.ProductID
	p.CustomerID = b.CustomerID
	p.LoanID = b.LoanID
	p.LoanAmount = b.LoanAmount.String()
	p.PolicyStart = b.Start
	p.PolicyEnd = b.End
	p.UpdatedAt = now
}

// ApplyCalculation mirrors a calculation onto the policy as its current
// premium and appends it to the loaded history.
func (p *Policy) ApplyCalculation(c *premium.Calculation, now time.Time) {
	p.PremiumValue = premium.FormatMoney(c.TotalPremium)
	p.PremiumPercentage = c.PremiumRate.String()
	p.UpdatedAt = now
	p.Calculations = append(p.Calculations, c)
}

// ApplySimplePremium sets PremiumValue to percentage% of LoanAmount.
func (p *Policy) ApplySimplePremium(percentage string, now time.Time) error {
	value, err := SimplePremium(p.LoanAmount, percentage)
	if err != nil {
		return err
	}
	p.PremiumPercentage = strings.TrimSpace(percentage)
	p.PremiumValue = value
	p.UpdatedAt = now
	return nil
}

// SimplePremium returns percentage/100 × loanAmount. Whole results keep one
// fractional digit, so 5% of 100000 is "5000.0".
func SimplePremium(loanAmount, percentage string) (string, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(loanAmount))
	if err != nil {
		return "", dErrors.Newf(dErrors.CodeCalculation, "invalid loan amount %q", loanAmount)
	}
	pct, err := decimal.NewFromString(strings.TrimSpace(percentage))
	if err != nil {
		return "", dErrors.Newf(dErrors.CodeCalculation, "invalid premium percentage %q", percentage)
	}
	value := amount.Mul(pct).Shift(-2)
	s := value.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}
