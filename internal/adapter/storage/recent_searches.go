package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.RecentSearchesStorage = (*MemoryRecentSearches)(nil)

// A MemoryRecentSearches keeps recent searches in process memory.
type MemoryRecentSearches struct {
	mu       sync.RWMutex
	capacity int
	lists    map[string][]string
}

func NewMemoryRecentSearches(capacity int) *MemoryRecentSearches {
	if capacity <= 0 {
		capacity = domain.DefaultRecentCapacity
	}
	return &MemoryRecentSearches{
		capacity: capacity,
		lists:    make(map[string][]string),
	}
}

func (s *MemoryRecentSearches) AddRecentSearch(
	ctx context.Context, key, text string,
) error {
	const op = "MemoryRecentSearches.AddRecentSearch"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = domain.PushRecentSearch(s.lists[key], text, s.capacity)
	return nil
}

func (s *MemoryRecentSearches) ReadRecentSearches(
	ctx context.Context, key string,
) ([]string, error) {
	const op = "MemoryRecentSearches.ReadRecentSearches"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lists[key]), nil
}
