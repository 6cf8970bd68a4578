package usage

import (
	"context"
	"sync"
	"time"
)

type attemptKey struct{ identity, key string }

type counterKey struct{ identity, day, kind string }

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[attemptKey]Attempt
	counters map[counterKey]int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[attemptKey]Attempt),
		counters: make(map[counterKey]int64),
	}
}

// Record implements Store.
func (s *MemoryStore) Record(ctx context.Context, a Attempt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ak := attemptKey{a.Identity, a.IdempotencyKey}
	if _, ok := s.attempts[ak]; ok {
		return false, nil
	}
	s.attempts[ak] = a
	s.counters[counterKey{a.Identity, a.Day(), a.Kind}]++
	return true, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context, identity string, day time.Time, kind string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[counterKey{identity, Day(day), kind}], nil
}
