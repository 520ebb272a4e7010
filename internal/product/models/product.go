package models

import (
	"strings"
	"time"

	"protekt/internal/premium"
	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

// BeneficiaryType names who receives a payout.
type BeneficiaryType string

const (
	BeneficiaryFanaka   BeneficiaryType = "FANAKA"
	BeneficiaryCustomer BeneficiaryType = "CUSTOMER"
)

func (b BeneficiaryType) IsValid() bool {
	return b == BeneficiaryFanaka || b == BeneficiaryCustomer
}

// DurationUnit is the unit of a product's cover period.
type DurationUnit string

const (
	DurationDays   DurationUnit = "DAYS"
	DurationWeeks  DurationUnit = "WEEKS"
	DurationMonths DurationUnit = "MONTHS"
	DurationYears  DurationUnit = "YEARS"
)

func (u DurationUnit) IsValid() bool {
	switch u {
	case DurationDays, DurationWeeks, DurationMonths, DurationYears:
		return true
	}
	return false
}

// Duration is a cover period such as 12 MONTHS.
type Duration struct {
	Value int          `json:"value"`
	Unit  DurationUnit `json:"unit"`
}

// AddTo returns t moved forward by the duration.
func (d Duration) AddTo(t time.Time) time.Time {
	switch d.Unit {
	case DurationDays:
		return t.AddDate(0, 0, d.Value)
	case DurationWeeks:
		return t.AddDate(0, 0, 7*d.Value)
	case DurationMonths:
		return t.AddDate(0, d.Value, 0)
	case DurationYears:
		return t.AddDate(d.Value, 0, 0)
	}
	return t
}

// Product is an insurance catalog entry.
//
// Invariants:
//   - Name is non-empty
//   - BeneficiaryType and Duration.Unit are known values
//   - Rates is always derived from Method and Properties
type Product struct {
	ID                         id.ProductID       `json:"id"`
	Provider                   string             `json:"provider"`
	ProviderProductID          string             `json:"provider_product_id"`
	Name                       string             `json:"name"`
	Description                string             `json:"description"`
	BeneficiaryType            BeneficiaryType    `json:"beneficiary_type"`
	Duration                   Duration           `json:"policy_duration"`
	Method                     premium.Method     `json:"premium_calculation_method"`
	RequiresComplexCalculation bool               `json:"requires_complex_calculation"`
	Properties                 []premium.Property `json:"properties"`
	Rates                      premium.RateTable  `json:"-"`
	CreatedAt                  time.Time          `json:"created_at"`
	UpdatedAt                  time.Time          `json:"updated_at"`
}

// ProductSpec carries the caller-supplied attributes of a product.
type ProductSpec struct {
	Provider                   string
	ProviderProductID          string
	Name                       string
	Description                string
	BeneficiaryType            BeneficiaryType
	Duration                   Duration
	Method                     string
	RequiresComplexCalculation bool
	Properties                 []premium.Property
}

func NewProduct(productID id.ProductID, spec ProductSpec, now time.Time) (*Product, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "product name cannot be empty")
	}
	if !spec.BeneficiaryType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid beneficiary type")
	}
	if !spec.Duration.Unit.IsValid() || spec.Duration.Value <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy duration must be a positive DAYS, WEEKS, MONTHS or YEARS value")
	}
	p := &Product{
		ID:                         productID,
		Provider:                   spec.Provider,
		ProviderProductID:          spec.ProviderProductID,
		Name:                       name,
		Description:                spec.Description,
		BeneficiaryType:            spec.BeneficiaryType,
		Duration:                   spec.Duration,
		RequiresComplexCalculation: spec.RequiresComplexCalculation,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	p.SetPricing(premium.ParseMethod(spec.Method), spec.Properties)
	return p, nil
}

// SetPricing replaces the method and properties and rebuilds the rate table.
// Stores call it when hydrating a product.
func (p *Product) SetPricing(method premium.Method, props []premium.Property) {
	p.Method = method
	p.Properties = append([]premium.Property(nil), props...)
	p.Rates = premium.NewRateTable(method, p.Properties)
}
