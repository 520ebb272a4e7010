// Package store persists customers, verifications and KYC documents.
package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"protekt/internal/customer/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

// InMemory keeps the customer aggregate in maps. It implements
// tx.Snapshotter so a MemoryRunner can roll it back.
type InMemory struct {
	mu            sync.RWMutex
	customers     map[id.CustomerID]models.Customer
	byMember      map[id.MemberID]id.CustomerID
	verifications map[id.CustomerID]models.Verification
	documents     map[id.DocumentID]models.KycDocument
	docOrder      []id.DocumentID
}

func NewInMemory() *InMemory {
	return &InMemory{
		customers:     make(map[id.CustomerID]models.Customer),
		byMember:      make(map[id.MemberID]id.CustomerID),
		verifications: make(map[id.CustomerID]models.Verification),
		documents:     make(map[id.DocumentID]models.KycDocument),
	}
}

func (s *InMemory) CreateCustomer(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byMember[c.MemberID]; ok {
		return sentinel.ErrConflict
	}
	s.customers[c.ID] = *c
	s.byMember[c.MemberID] = c.ID
	return nil
}

func (s *InMemory) FindCustomerByID(_ context.Context, customerID id.CustomerID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[customerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) FindCustomerByMember(_ context.Context, memberID id.MemberID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customerID, ok := s.byMember[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := s.customers[customerID]
	return &c, nil
}

func (s *InMemory) CreateVerification(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verifications[v.CustomerID]; ok {
		return sentinel.ErrConflict
	}
	cp := *v
	cp.Documents = nil
	s.verifications[v.CustomerID] = cp
	return nil
}

// FindVerification returns the customer's verification with its documents.
func (s *InMemory) FindVerification(_ context.Context, customerID id.CustomerID) (*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[customerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	v.Documents = s.documentsFor(v.ID)
	return &v, nil
}

// FindVerificationForUpdate is FindVerification. Units of work on the memory
// stores are already serialised by tx.MemoryRunner.
func (s *InMemory) FindVerificationForUpdate(ctx context.Context, customerID id.CustomerID) (*models.Verification, error) {
	return s.FindVerification(ctx, customerID)
}

func (s *InMemory) UpdateVerification(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verifications[v.CustomerID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *v
	cp.Documents = nil
	s.verifications[v.CustomerID] = cp
	return nil
}

func (s *InMemory) CreateDocument(_ context.Context, doc *models.KycDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = *doc
	s.docOrder = append(s.docOrder, doc.ID)
	return nil
}

func (s *InMemory) FindDocument(_ context.Context, docID id.DocumentID) (*models.KycDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &doc, nil
}

// MarkDocumentsVerified flags every document of the verification and returns
// how many were changed.
func (s *InMemory) MarkDocumentsVerified(_ context.Context, verificationID id.VerificationID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for docID, doc := range s.documents {
		if doc.VerificationID != verificationID || doc.Verified {
			continue
		}
		doc.Verified = true
		doc.UpdatedAt = now
		s.documents[docID] = doc
		n++
	}
	return n, nil
}

func (s *InMemory) documentsFor(verificationID id.VerificationID) []*models.KycDocument {
	var docs []*models.KycDocument
	for _, docID := range s.docOrder {
		if doc := s.documents[docID]; doc.VerificationID == verificationID {
			docs = append(docs, &doc)
		}
	}
	return docs
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	customers := maps.Clone(s.customers)
	byMember := maps.Clone(s.byMember)
	verifications := maps.Clone(s.verifications)
	documents := maps.Clone(s.documents)
	docOrder := slices.Clone(s.docOrder)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.customers = customers
		s.byMember = byMember
		s.verifications = verifications
		s.documents = documents
		s.docOrder = docOrder
	}
}
