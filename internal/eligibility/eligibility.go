// Package eligibility answers whether a person may take insurance: are they a
// member, an enrolled customer, do they hold an active loan, and is it
// already insured. It only reads and never fails.
package eligibility

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"protekt/internal/platform/tracing"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

const tracerScope = "protekt/internal/eligibility"

// Stages reported in metrics.
const (
	stageNone       = "none"
	stageMember     = "member"
	stageCustomer   = "customer"
	stageActiveLoan = "active_loan"
	stageInsured    = "insured"
	stageLoans      = "loans"
	stagePolicies   = "policies"
)

// Result is the outcome of a check. CustomerID and MemberID are set when the
// corresponding record was found.
type Result struct {
	IsMember          bool           `json:"is_member"`
	IsCustomer        bool           `json:"is_customer"`
	HasActiveLoan     bool           `json:"has_active_loan"`
	ActiveLoanInsured bool           `json:"active_loan_insured"`
	CustomerID        *id.CustomerID `json:"customer_id,omitempty"`
	MemberID          *id.MemberID   `json:"member_id,omitempty"`
}

type Service struct {
	members   MemberLookup
	customers CustomerLookup
	loans     LoanLookup
	policies  PolicyLookup
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(members MemberLookup, customers CustomerLookup, loans LoanLookup, policies PolicyLookup, opts ...Option) *Service {
	s := &Service{
		members:   members,
		customers: customers,
		loans:     loans,
		policies:  policies,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check looks the person up by phone and/or national registration number.
// With neither given it returns the zero Result without any lookup. Failed
// member or customer lookups yield the zero Result; failed loan or policy
// lookups clear only the loan flags.
func (s *Service) Check(ctx context.Context, phone, nrc *string) Result {
	ctx, span := tracing.Start(ctx, tracerScope, "eligibility.Check")
	var outcome string
	defer func() {
		span.SetAttributes(attribute.String("outcome", outcome))
		tracing.End(span, nil)
		s.metrics.IncrementOutcome(outcome)
	}()

	phone, nrc = normalize(phone), normalize(nrc)
	if phone == nil && nrc == nil {
		outcome = stageNone
		return Result{}
	}

	member, err := s.members.FirstCustomerByContact(ctx, phone, nrc)
	if err != nil {
		s.warnUnlessNotFound(ctx, err, stageMember)
		outcome = stageNone
		return Result{}
	}
	memberID := member.ID
	result := Result{IsMember: true, MemberID: &memberID}
	outcome = stageMember

	customer, err := s.customers.FindCustomerByMember(ctx, member.ID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.warn(ctx, err, stageCustomer, member.ID)
			outcome = stageNone
			return Result{}
		}
		return result
	}
	customerID := customer.ID
	result.IsCustomer = true
	result.CustomerID = &customerID
	outcome = stageCustomer

	loans, err := s.loans.FindActiveByMember(ctx, member.ID)
	if err != nil {
		s.warn(ctx, err, stageLoans, member.ID)
		return result
	}
	if len(loans) == 0 {
		return result
	}
	loanIDs := make([]id.LoanID, len(loans))
	for i, loan := range loans {
		loanIDs[i] = loan.ID
	}

	insured, err := s.policies.ExistsForAnyLoan(ctx, loanIDs)
	if err != nil {
		s.warn(ctx, err, stagePolicies, member.ID)
		return result
	}
	result.HasActiveLoan = true
	result.ActiveLoanInsured = insured
	outcome = stageActiveLoan
	if insured {
		outcome = stageInsured
	}
	return result
}

func (s *Service) warnUnlessNotFound(ctx context.Context, err error, stage string) {
	if errors.Is(err, sentinel.ErrNotFound) {
		return
	}
	s.metrics.IncrementDegraded(stage)
	s.logger.WarnContext(ctx, "eligibility lookup failed",
		"stage", stage,
		"error", err,
	)
}

func (s *Service) warn(ctx context.Context, err error, stage string, memberID id.MemberID) {
	s.metrics.IncrementDegraded(stage)
	s.logger.WarnContext(ctx, "eligibility lookup failed",
		"stage", stage,
		"member_id", memberID.String(),
		"error", err,
	)
}

func normalize(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
