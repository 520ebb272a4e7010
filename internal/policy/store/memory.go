// Package store persists policies and their append-only premium history.
package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"protekt/internal/policy/models"
	"protekt/internal/premium"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

// InMemory enforces one policy per loan with a check-then-insert under its
// lock. It implements tx.Snapshotter.
type InMemory struct {
	mu           sync.RWMutex
	policies     map[id.PolicyID]models.Policy
	byLoan       map[id.LoanID]id.PolicyID
	calculations []premium.Calculation
}

func NewInMemory() *InMemory {
	return &InMemory{
		policies: make(map[id.PolicyID]models.Policy),
		byLoan:   make(map[id.LoanID]id.PolicyID),
	}
}

// Create inserts p. It returns sentinel.ErrConflict when the loan is already bound.
func (s *InMemory) Create(_ context.Context, p *models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[p.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byLoan[p.LoanID]; ok {
		return sentinel.ErrConflict
	}
	s.policies[p.ID] = stripHistory(p)
	s.byLoan[p.LoanID] = p.ID
	return nil
}

// Update overwrites p. Moving p to a loan bound by another policy returns
// sentinel.ErrConflict.
func (s *InMemory) Update(_ context.Context, p *models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.policies[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, bound := s.byLoan[p.LoanID]; bound && owner != p.ID {
		return sentinel.ErrConflict
	}
	delete(s.byLoan, current.LoanID)
	s.byLoan[p.LoanID] = p.ID
	s.policies[p.ID] = stripHistory(p)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, policyID id.PolicyID) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[policyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindByLoanID(_ context.Context, loanID id.LoanID) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policyID, ok := s.byLoan[loanID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p := s.policies[policyID]
	return &p, nil
}

// ExistsForAnyLoan reports whether any of loanIDs is bound by a policy.
func (s *InMemory) ExistsForAnyLoan(_ context.Context, loanIDs []id.LoanID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, loanID := range loanIDs {
		if _, ok := s.byLoan[loanID]; ok {
			return true, nil
		}
	}
	return false, nil
}

// AppendCalculation adds a history record. Records are never changed.
func (s *InMemory) AppendCalculation(_ context.Context, c *premium.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[c.PolicyID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.calculations {
		if existing.ID == c.ID {
			return sentinel.ErrConflict
		}
	}
	s.calculations = append(s.calculations, *c)
	return nil
}

// ListCalculations returns the policy's history, oldest first.
func (s *InMemory) ListCalculations(_ context.Context, policyID id.PolicyID) ([]*premium.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*premium.Calculation
	for _, c := range s.calculations {
		if c.PolicyID == policyID {
			out = append(out, &c)
		}
	}
	return out, nil
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	policies := maps.Clone(s.policies)
	byLoan := maps.Clone(s.byLoan)
	calculations := slices.Clone(s.calculations)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.policies = policies
		s.byLoan = byLoan
		s.calculations = calculations
	}
}

func stripHistory(p *models.Policy) models.Policy {
	cp := *p
	cp.Calculations = nil
	return cp
}
