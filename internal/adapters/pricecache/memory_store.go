package pricecache

import (
	"context"
	"product-filter-service/internal/core/domain"
	"sync"
	"time"
)

type entry struct {
	value     domain.PriceRange
	expiresAt time.Time
}

// MemoryStore keeps the price range in process memory. Each replica holds its own copy.
type MemoryStore struct {
	mu    sync.RWMutex
	entry *entry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context) (domain.PriceRange, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil || !s.now().Before(s.entry.expiresAt) {
		return domain.PriceRange{}, false, nil
	}
	return s.entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, value domain.PriceRange, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
	return nil
}
