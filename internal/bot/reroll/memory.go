package reroll

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a bounded in-process Store.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]Entry
	order    []string
}

// NewMemoryStore returns a MemoryStore holding at most capacity entries.
// A non-positive capacity selects DefaultCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		entries:  make(map[string]Entry, capacity),
	}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, replyID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[replyID]; ok {
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == replyID })
	}
	s.entries[replyID] = entry
	s.order = append(s.order, replyID)
	for len(s.order) > s.capacity {
		delete(s.entries, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, replyID string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[replyID]
	if !ok {
		return Entry{}, false, nil
	}
	delete(s.entries, replyID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == replyID })
	return entry, true, nil
}

// Len reports the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
