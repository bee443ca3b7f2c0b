package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

// Ensure DescriptorStore implements the interface.
var _ driven.DescriptorStore = (*DescriptorStore)(nil)

// DescriptorStore is an in-memory implementation of driven.DescriptorStore.
// It counts fetches per locator so callers can observe caching.
type DescriptorStore struct {
	mu       sync.RWMutex
	payloads map[string][]byte
	fetches  map[string]int
	failures map[string]error
}

// NewDescriptorStore creates a new in-memory descriptor store.
func NewDescriptorStore() *DescriptorStore {
	return &DescriptorStore{
		payloads: make(map[string][]byte),
		fetches:  make(map[string]int),
		failures: make(map[string]error),
	}
}

// Fetch returns the payload stored at locator.
func (s *DescriptorStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[locator]++
	if err, ok := s.failures[locator]; ok {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}
	data, ok := s.payloads[locator]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, domain.ErrDescriptorMissing)
	}
	return slices.Clone(data), nil
}

// Put stores data at locator.
func (s *DescriptorStore) Put(_ context.Context, locator string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[locator] = slices.Clone(data)
	delete(s.failures, locator)
	return nil
}

// List returns every stored locator in lexical order.
func (s *DescriptorStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.payloads))
	for loc := range s.payloads {
		out = append(out, loc)
	}
	slices.Sort(out)
	return out, nil
}

// Fail makes every later fetch of locator return err.
func (s *DescriptorStore) Fail(locator string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[locator] = err
}

// FetchCount returns how many times locator was fetched.
func (s *DescriptorStore) FetchCount(locator string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches[locator]
}

// TotalFetches returns the number of fetches across all locators.
func (s *DescriptorStore) TotalFetches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, n := range s.fetches {
		total += n
	}
	return total
}

// Close is a no-op.
func (s *DescriptorStore) Close() error {
	return nil
}
