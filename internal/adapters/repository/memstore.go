package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/eventquote/internal/domain/model"
)

const driverMemory = "memory"

// MemoryStore keeps documents in process memory, in insertion order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]model.Document
	closed      bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]model.Document)}
}

// EnsureCollection implements Store.
func (s *MemoryStore) EnsureCollection(_ context.Context, name string) (err error) {
	defer observe(driverMemory, "ensure_collection", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storeErr("ensure collection "+name, ErrClosed)
	}
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = nil
	}
	return nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, collection string, doc model.Document) (_ model.Document, err error) {
	defer observe(driverMemory, "create", time.Now(), &err)

	id, err := newID()
	if err != nil {
		return nil, err
	}
	stored := withID(doc, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storeErr("create in "+collection, ErrClosed)
	}
	docs, ok := s.collections[collection]
	if !ok {
		return nil, storeErr("create in "+collection, ErrUnknownCollection)
	}
	s.collections[collection] = append(docs, stored)
	return stored.Clone(), nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, collection string) (_ []model.Document, err error) {
	defer observe(driverMemory, "list", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storeErr("list "+collection, ErrClosed)
	}
	docs, ok := s.collections[collection]
	if !ok {
		return nil, storeErr("list "+collection, ErrUnknownCollection)
	}
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Clone())
	}
	return out, nil
}

// Close implements Store. Further calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
