package store

import (
	"context"
	"sort"
	"sync"

	"protekt/internal/loan/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

// InMemory holds loans for tests and local runs.
type InMemory struct {
	mu    sync.RWMutex
	loans map[id.LoanID]*models.Loan
}

func NewInMemory() *InMemory {
	return &InMemory{loans: make(map[id.LoanID]*models.Loan)}
}

// Put adds or replaces a loan.
func (s *InMemory) Put(loan *models.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *loan
	s.loans[loan.ID] = &cp
}

func (s *InMemory) FindByID(_ context.Context, loanID id.LoanID) (*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loan, ok := s.loans[loanID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *loan
	return &cp, nil
}

// FindActiveByMember returns the member's active loans ordered by id.
func (s *InMemory) FindActiveByMember(_ context.Context, memberID id.MemberID) ([]*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Loan
	for _, loan := range s.loans {
		if loan.MemberID == memberID && loan.IsActive() {
			cp := *loan
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
