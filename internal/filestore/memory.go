package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"protekt/pkg/platform/sentinel"
)

// InMemory keeps objects in a map.
type InMemory struct {
	mu        sync.Mutex
	objects   map[string]Object
	uploads   int
	failAfter int
}

// Object is a stored file.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[string]Object)}
}

// FailAfter lets n more uploads succeed and fails the rest. Zero disables.
func (m *InMemory) FailAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.uploads = 0
}

func (m *InMemory) Upload(_ context.Context, file Upload, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && m.uploads >= m.failAfter {
		return "", fmt.Errorf("%w: simulated upload failure", sentinel.ErrUnavailable)
	}
	m.uploads++

	var data []byte
	if file.Body != nil {
		b, err := io.ReadAll(file.Body)
		if err != nil {
			return "", fmt.Errorf("read upload %q: %w", file.Name, err)
		}
		data = b
	}
	key := ObjectKey("", folder, file.Name)
	m.objects[key] = Object{Name: file.Name, ContentType: file.ContentType, Data: bytes.Clone(data)}
	return key, nil
}

func (m *InMemory) Sign(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", sentinel.ErrNotFound
	}
	q := url.Values{"expires": {ttl.String()}}
	return "memory://" + key + "?" + q.Encode(), nil
}

func (m *InMemory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Keys lists stored object keys.
func (m *InMemory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// Get returns a stored object.
func (m *InMemory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}
