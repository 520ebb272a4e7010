package store

import (
	"context"
	"sync"

	"protekt/internal/product/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

// InMemory is a map-backed product catalog.
type InMemory struct {
	mu       sync.RWMutex
	products map[id.ProductID]*models.Product
}

func NewInMemory() *InMemory {
	return &InMemory{products: make(map[id.ProductID]*models.Product)}
}

func (s *InMemory) Save(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *product
	cp.SetPricing(product.Method, product.Properties)
	s.products[product.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	cp.Properties = append(cp.Properties[:0:0], p.Properties...)
	return &cp, nil
}
