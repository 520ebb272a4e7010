package store

import (
	"context"
	"sync"

	"protekt/internal/member/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

// InMemory holds members for tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	members map[id.MemberID]*models.Member
}

func NewInMemory() *InMemory {
	return &InMemory{members: make(map[id.MemberID]*models.Member)}
}

func (s *InMemory) Put(member *models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *member
	s.members[member.ID] = &cp
}

func (s *InMemory) FindByID(_ context.Context, memberID id.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

// FirstCustomerByContact returns the CUSTOMER member with the lowest id whose
// mobile equals phone or whose id number equals nrc. Nil arguments never match.
func (s *InMemory) FirstCustomerByContact(_ context.Context, phone, nrc *string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Member
	for _, m := range s.members {
		if m.Type != models.TypeCustomer {
			continue
		}
		if !(phone != nil && m.Mobile == *phone) && !(nrc != nil && m.IDNumber == *nrc) {
			continue
		}
		if best == nil || m.ID < best.ID {
			best = m
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *best
	return &cp, nil
}
