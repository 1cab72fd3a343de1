package limits

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type usageKey struct {
	userID uuid.UUID
	res    Resource
}

// MemoryUsageStore is a mutex-guarded UsageStore for tests and local
// development. Unlike the Redis store its counters never roll over.
type MemoryUsageStore struct {
	mu       sync.Mutex
	counters map[usageKey]int64
}

// NewMemoryUsageStore returns an empty in-memory usage store.
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{counters: make(map[usageKey]int64)}
}

func (s *MemoryUsageStore) Get(ctx context.Context, userID uuid.UUID, res Resource) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[usageKey{userID: userID, res: res}], nil
}

func (s *MemoryUsageStore) IncrementBy(ctx context.Context, userID uuid.UUID, res Resource, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{userID: userID, res: res}
	s.counters[key] += delta
	return s.counters[key], nil
}

// Reset clears a user's counters, emulating a period rollover in tests.
func (s *MemoryUsageStore) Reset(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.counters {
		if key.userID == userID {
			delete(s.counters, key)
		}
	}
}
