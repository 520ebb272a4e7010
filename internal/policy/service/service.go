// Package service binds policies to loans and keeps their premium history.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	customerModels "protekt/internal/customer/models"
	loanModels "protekt/internal/loan/models"
	"protekt/internal/platform/events"
	"protekt/internal/platform/tracing"
	"protekt/internal/policy/metrics"
	"protekt/internal/policy/models"
	"protekt/internal/premium"
	productModels "protekt/internal/product/models"
	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
	"protekt/pkg/platform/sentinel"
	"protekt/pkg/platform/tx"
	"protekt/pkg/platform/validate"
	"protekt/pkg/requestcontext"
)

const tracerScope = "protekt/internal/policy"

const (
	pathEngine = "engine"
	pathSimple = "simple"
)

type PolicyStore interface {
	Create(ctx context.Context, p *models.Policy) error
	Update(ctx context.Context, p *models.Policy) error
	FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error)
	FindByLoanID(ctx context.Context, loanID id.LoanID) (*models.Policy, error)
	AppendCalculation(ctx context.Context, c *premium.Calculation) error
	ListCalculations(ctx context.Context, policyID id.PolicyID) ([]*premium.Calculation, error)
}

type LoanFinder interface {
	FindByID(ctx context.Context, loanID id.LoanID) (*loanModels.Loan, error)
}

type CustomerFinder interface {
	FindCustomerByID(ctx context.Context, customerID id.CustomerID) (*customerModels.Customer, error)
}

type ProductFinder interface {
	FindByID(ctx context.Context, productID id.ProductID) (*productModels.Product, error)
}

type Calculator interface {
	Calculate(in premium.Input) (*premium.Calculation, error)
}

type CreatePolicyRequest struct {
	ProductID         id.ProductID  `validate:"required"`
	CustomerID        id.CustomerID `validate:"required"`
	LoanID            id.LoanID     `validate:"gt=0"`
	PremiumPercentage *string       `validate:"omitempty,numeric"`
}

type UpdatePolicyRequest struct {
	PolicyID          id.PolicyID   `validate:"required"`
	ProductID         id.ProductID  `validate:"required"`
	CustomerID        id.CustomerID `validate:"required"`
	LoanID            id.LoanID     `validate:"gt=0"`
	PremiumPercentage string        `validate:"required,numeric"`
}

// Service binds policies to loans. Creation prices complex products with the
// premium engine and records the calculation; updates always use the simple
// percentage formula.
type Service struct {
	policies  PolicyStore
	loans     LoanFinder
	customers CustomerFinder
	products  ProductFinder
	engine    Calculator
	tx        tx.Runner
	logger    *slog.Logger
	metrics   *metrics.Metrics
	events    events.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithCalculator replaces the default premium engine.
func WithCalculator(c Calculator) Option {
	return func(s *Service) {
		s.engine = c
	}
}

func New(policies PolicyStore, loans LoanFinder, customers CustomerFinder, products ProductFinder, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		policies:  policies,
		loans:     loans,
		customers: customers,
		products:  products,
		engine:    premium.NewEngine(),
		tx:        runner,
		logger:    slog.New(slog.DiscardHandler),
		events:    events.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePolicy binds a loan to a product for a customer. A loan can be bound
// only once; a second attempt, concurrent or not, fails with CodeConflict.
func (s *Service) CreatePolicy(ctx context.Context, req CreatePolicyRequest) (_ *models.Policy, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "policy.Create",
		attribute.Int64("loan_id", int64(req.LoanID)),
		attribute.String("product_id", req.ProductID.String()),
	)
	defer func() { tracing.End(span, err) }()

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	start := time.Now()
	now := requestcontext.Now(ctx)

	var (
		policy *models.Policy
		calc   *premium.Calculation
		path   string
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		loan, err := s.loans.FindByID(ctx, req.LoanID)
		if err != nil {
			return translate(err, "loan not found", "")
		}
		switch _, err := s.policies.FindByLoanID(ctx, req.LoanID); {
		case err == nil:
			return dErrors.New(dErrors.CodeConflict, "loan already insured")
		case !errors.Is(err, sentinel.ErrNotFound):
			return translate(err, "", "")
		}
		if _, err := s.customers.FindCustomerByID(ctx, req.CustomerID); err != nil {
			return translate(err, "customer not found", "")
		}
		product, err := s.products.FindByID(ctx, req.ProductID)
		if err != nil {
			return translate(err, "product not found", "")
		}

		p, err := models.NewPolicy(id.PolicyID(uuid.New()), binding(req.ProductID, req.CustomerID, loan, product), now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "invalid policy")
		}

		if !product.RequiresComplexCalculation {
			path = pathSimple
			pct := ""
			if req.PremiumPercentage != nil {
				pct = *req.PremiumPercentage
			}
			if strings.TrimSpace(pct) == "" {
				return dErrors.New(dErrors.CodeValidation, "premium percentage is required for products priced by percentage")
			}
			if err := p.ApplySimplePremium(pct, now); err != nil {
				return err
			}
			if err := s.policies.Create(ctx, p); err != nil {
				return translate(err, "", "loan already insured")
			}
			policy = p
			return nil
		}

		path = pathEngine
		if req.PremiumPercentage != nil {
			p.PremiumPercentage = strings.TrimSpace(*req.PremiumPercentage)
		}
		if err := s.policies.Create(ctx, p); err != nil {
			return translate(err, "", "loan already insured")
		}
		calc, err = s.price(ctx, p, product, loan.Principal, now)
		if err != nil {
			return err
		}
		if err := s.policies.Update(ctx, p); err != nil {
			return translate(err, "policy not found", "loan already insured")
		}
		policy, err = s.load(ctx, p.ID)
		return err
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncrementBindConflict()
		}
		return nil, err
	}

	s.metrics.IncrementBound(path)
	s.metrics.ObserveBindLatency(time.Since(start))
	if calc != nil {
		s.metrics.IncrementCalculation(calc.Method.String())
	}
	s.logger.InfoContext(ctx, "policy bound",
		"policy_id", policy.ID.String(),
		"loan_id", policy.LoanID.String(),
		"product_id", policy.ProductID.String(),
		"premium_value", policy.PremiumValue,
		"pricing", path,
	)
	events.Emit(ctx, s.events, s.logger, events.Event{
		Type:       events.PolicyBound,
		Key:        policy.ID.String(),
		OccurredAt: now,
		Attributes: map[string]any{
			"loan_id":       int64(policy.LoanID),
			"customer_id":   policy.CustomerID.String(),
			"product_id":    policy.ProductID.String(),
			"premium_value": policy.PremiumValue,
		},
	})
	return policy, nil
}

// UpdatePolicy re-resolves the loan, customer and product and recomputes the
// premium with the simple percentage formula. It never runs the premium
// engine or records history, whatever the product.
func (s *Service) UpdatePolicy(ctx context.Context, req UpdatePolicyRequest) (_ *models.Policy, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "policy.Update",
		attribute.String("policy_id", req.PolicyID.String()),
		attribute.Int64("loan_id", int64(req.LoanID)),
	)
	defer func() { tracing.End(span, err) }()

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	var policy *models.Policy
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		loan, err := s.loans.FindByID(ctx, req.LoanID)
		if err != nil {
			return translate(err, "loan not found", "")
		}
		if _, err := s.customers.FindCustomerByID(ctx, req.CustomerID); err != nil {
			return translate(err, "customer not found", "")
		}
		product, err := s.products.FindByID(ctx, req.ProductID)
		if err != nil {
			return translate(err, "product not found", "")
		}
		p, err := s.policies.FindByID(ctx, req.PolicyID)
		if err != nil {
			return translate(err, "policy not found", "")
		}

		p.Rebind(binding(req.ProductID, req.CustomerID, loan, product), now)
		if err := p.ApplySimplePremium(req.PremiumPercentage, now); err != nil {
			return err
		}
		if err := s.policies.Update(ctx, p); err != nil {
			return translate(err, "policy not found", "loan already insured by another policy")
		}
		policy, err = s.load(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementUpdated()
	s.logger.InfoContext(ctx, "policy updated",
		"policy_id", policy.ID.String(),
		"loan_id", policy.LoanID.String(),
		"premium_value", policy.PremiumValue,
	)
	events.Emit(ctx, s.events, s.logger, events.Event{
		Type:       events.PolicyUpdated,
		Key:        policy.ID.String(),
		OccurredAt: now,
		Attributes: map[string]any{
			"loan_id":       int64(policy.LoanID),
			"premium_value": policy.PremiumValue,
		},
	})
	return policy, nil
}

// RecalculatePremium prices the stored policy again with its product's
// formula, appends the result to the history and mirrors it as the current
// premium. Loan amount and cover dates are left as they are. The loan is
// only looked up for the Hollard formula, which prices on its principal.
func (s *Service) RecalculatePremium(ctx context.Context, policyID id.PolicyID) (_ *premium.Calculation, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "policy.RecalculatePremium",
		attribute.String("policy_id", policyID.String()),
	)
	defer func() { tracing.End(span, err) }()

	now := requestcontext.Now(ctx)
	var calc *premium.Calculation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.policies.FindByID(ctx, policyID)
		if err != nil {
			return translate(err, "policy not found", "")
		}
		product, err := s.products.FindByID(ctx, p.ProductID)
		if err != nil {
			return translate(err, "product not found", "")
		}
		var sumAssured decimal.Decimal
		if product.Method == premium.MethodHollard {
			loan, err := s.loans.FindByID(ctx, p.LoanID)
			if err != nil {
				return translate(err, "loan not found", "")
			}
			sumAssured = loan.Principal
		}
		calc, err = s.price(ctx, p, product, sumAssured, now)
		if err != nil {
			return err
		}
		if err := s.policies.Update(ctx, p); err != nil {
			return translate(err, "policy not found", "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCalculation(calc.Method.String())
	s.logger.InfoContext(ctx, "premium recalculated",
		"policy_id", policyID.String(),
		"method", calc.Method.String(),
		"total_premium", premium.FormatMoney(calc.TotalPremium),
	)
	events.Emit(ctx, s.events, s.logger, events.Event{
		Type:       events.PremiumRecalculated,
		Key:        policyID.String(),
		OccurredAt: now,
		Attributes: map[string]any{
			"calculation_id": calc.ID.String(),
			"method":         calc.Method.String(),
			"total_premium":  premium.FormatMoney(calc.TotalPremium),
		},
	})
	return calc, nil
}

// GetPolicy returns the policy with its premium history.
func (s *Service) GetPolicy(ctx context.Context, policyID id.PolicyID) (_ *models.Policy, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "policy.Get")
	defer func() { tracing.End(span, err) }()

	return s.load(ctx, policyID)
}

// ListCalculations returns the policy's premium history, oldest first.
func (s *Service) ListCalculations(ctx context.Context, policyID id.PolicyID) (_ []*premium.Calculation, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "policy.ListCalculations")
	defer func() { tracing.End(span, err) }()

	if _, err := s.policies.FindByID(ctx, policyID); err != nil {
		return nil, translate(err, "policy not found", "")
	}
	calcs, err := s.policies.ListCalculations(ctx, policyID)
	if err != nil {
		return nil, translate(err, "", "")
	}
	return calcs, nil
}

// price runs the engine for p, appends the stamped calculation and mirrors it
// onto p. The caller persists p.
// price runs the product's formula over the policy. sumAssured is only read
// by the Hollard formula.
func (s *Service) price(ctx context.Context, p *models.Policy, product *productModels.Product, sumAssured decimal.Decimal, now time.Time) (*premium.Calculation, error) {
	calc, err := s.engine.Calculate(premium.Input{
		Method:            product.Method,
		Rates:             product.Rates,
		SumAssured:        sumAssured,
		LoanAmount:        p.LoanAmount,
		PremiumPercentage: p.PremiumPercentage,
	})
	if err != nil {
		return nil, dErrors.Classify(err, dErrors.CodeCalculation, "calculate premium")
	}
	calc.Stamp(id.CalculationID(uuid.New()), p.ID, now)
	if err := s.policies.AppendCalculation(ctx, calc); err != nil {
		return nil, translate(err, "policy not found", "")
	}
	p.ApplyCalculation(calc, now)
	return calc, nil
}

func (s *Service) load(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	p, err := s.policies.FindByID(ctx, policyID)
	if err != nil {
		return nil, translate(err, "policy not found", "")
	}
	calcs, err := s.policies.ListCalculations(ctx, policyID)
	if err != nil {
		return nil, translate(err, "", "")
	}
	p.Calculations = calcs
	return p, nil
}

// binding derives the cover window from the loan. Without a maturity date the
// product's policy duration runs from disbursement.
func binding(productID id.ProductID, customerID id.CustomerID, loan *loanModels.Loan, product *productModels.Product) models.Binding {
	b := models.Binding{
		ProductID:  productID,
		CustomerID: customerID,
		LoanID:     loan.ID,
		LoanAmount: loan.TotalDisbursed,
		Start:      loan.DisbursedAt,
		End:        loan.MaturityDate,
	}
	if b.End == nil && b.Start != nil {
		end := product.Duration.AddTo(*b.Start)
		b.End = &end
	}
	return b
}

// translate maps store sentinels to domain errors. Unclassified failures are
// storage failures.
func translate(err error, notFound, conflict string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound) && notFound != "":
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict) && conflict != "":
		return dErrors.New(dErrors.CodeConflict, conflict)
	default:
		return dErrors.Classify(err, dErrors.CodeUnavailable, "storage failure")
	}
}
