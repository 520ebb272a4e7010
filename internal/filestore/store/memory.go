// Package store persists file records.
package store

import (
	"context"
	"maps"
	"sync"

	"protekt/internal/filestore/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	files map[id.FileID]models.File
}

func NewInMemory() *InMemory {
	return &InMemory{files: make(map[id.FileID]models.File)}
}

func (s *InMemory) Create(_ context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[file.ID]; ok {
		return sentinel.ErrConflict
	}
	s.files[file.ID] = *file
	return nil
}

func (s *InMemory) FindByID(_ context.Context, fileID id.FileID) (*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[fileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &f, nil
}

func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	saved := maps.Clone(s.files)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.files = saved
	}
}
