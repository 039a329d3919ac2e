package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Data, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.expired(entry) {
		s.mu.Lock()
		// a Set may have replaced the entry since the read lock was released
		if cur, ok := s.sessions[id]; ok && s.expired(cur) {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
		return nil, nil
	}
	// Callers mutate what they get back; hand out a copy.
	data := entry.data
	return &data, nil
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !s.now().Before(e.expiresAt)
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, data *Data) error {
	now := s.now()
	data.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[data.ID] = memoryEntry{data: *data, expiresAt: now.Add(s.ttl)}
	return nil
}

// Destroy implements Store.
func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]memoryEntry)
	return nil
}
