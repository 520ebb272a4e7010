// Package store persists claims and their evidence documents.
package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"protekt/internal/claim/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

// InMemory implements tx.Snapshotter.
type InMemory struct {
	mu        sync.RWMutex
	claims    map[id.ClaimID]models.Claim
	documents map[id.DocumentID]models.ClaimDocument
	docOrder  []id.DocumentID
}

func NewInMemory() *InMemory {
	return &InMemory{
		claims:    make(map[id.ClaimID]models.Claim),
		documents: make(map[id.DocumentID]models.ClaimDocument),
	}
}

func (s *InMemory) Create(_ context.Context, c *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[c.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *c
	cp.Documents = nil
	s.claims[c.ID] = cp
	return nil
}

// CreateDocument returns sentinel.ErrNotFound when the claim does not exist.
func (s *InMemory) CreateDocument(_ context.Context, doc *models.ClaimDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[doc.ClaimID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.documents[doc.ID]; ok {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = *doc
	s.docOrder = append(s.docOrder, doc.ID)
	return nil
}

// FindByID returns the claim with its documents in the order they were attached.
func (s *InMemory) FindByID(_ context.Context, claimID id.ClaimID) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[claimID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.Documents = []*models.ClaimDocument{}
	for _, docID := range s.docOrder {
		if doc := s.documents[docID]; doc.ClaimID == claimID {
			c.Documents = append(c.Documents, &doc)
		}
	}
	return &c, nil
}

// Count returns the number of stored claims.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	claims := maps.Clone(s.claims)
	documents := maps.Clone(s.documents)
	docOrder := slices.Clone(s.docOrder)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.claims = claims
		s.documents = documents
		s.docOrder = docOrder
	}
}
