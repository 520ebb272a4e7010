// Package models describes loan contracts owned by the loan management system.
// This module only reads them.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "protekt/pkg/domain"
)

const StatusActive = "ACTIVE"

// Loan is a disbursed loan contract keyed by its loan application id.
type Loan struct {
	ID             id.LoanID       `json:"id"`
	MemberID       id.MemberID     `json:"member_id"`
	Principal      decimal.Decimal `json:"principal"`
	TotalDisbursed decimal.Decimal `json:"total_disbursed"`
	DisbursedAt    *time.Time      `json:"disbursed_at,omitempty"`
	MaturityDate   *time.Time      `json:"maturity_date,omitempty"`
	Status         string          `json:"status"`
}

func (l *Loan) IsActive() bool {
	return strings.EqualFold(l.Status, StatusActive)
}
