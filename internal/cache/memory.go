package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is a concurrency-safe in-memory Store. The clock is injectable
// so expiry behaviour is deterministic under test.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	clock   clockwork.Clock
}

// NewMemoryStore creates an empty store on the real clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(clockwork.NewRealClock())
}

// NewMemoryStoreWithClock creates an empty store on the given clock.
func NewMemoryStoreWithClock(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		clock:   clock,
	}
}

func (s *MemoryStore) Get(key string, dataType DataType) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.DataType != dataType {
		return Entry{}, false
	}
	if s.clock.Now().After(e.ExpiresAt) {
		// Lazy expiry on read.
		delete(s.entries, key)
		return Entry{}, false
	}
	e.AccessCount++
	return *e, true
}

func (s *MemoryStore) GetStale(key string, dataType DataType) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.DataType != dataType {
		return Entry{}, false
	}
	return *e, true
}

// GetSimilar scans for an entry whose location contains the requested one
// (or shares its leading characters) created within the window, preferring
// the most recent. Best-effort heuristic: matches are textual, not
// geographic.
func (s *MemoryStore) GetSimilar(location string, dataType DataType, window time.Duration) (Entry, bool) {
	target := strings.ToLower(strings.TrimSpace(location))
	if target == "" {
		return Entry{}, false
	}
	prefix := leadingRunes(target, 2)
	cutoff := s.clock.Now().Add(-window)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Entry
	for _, e := range s.entries {
		if e.DataType != dataType || e.CreatedAt.Before(cutoff) {
			continue
		}
		candidate := strings.ToLower(e.Location)
		if candidate == target {
			continue // the exact key already missed
		}
		if !strings.Contains(candidate, target) && !strings.HasPrefix(candidate, prefix) {
			continue
		}
		if best == nil || e.CreatedAt.After(best.CreatedAt) {
			best = e
		}
	}
	if best == nil {
		return Entry{}, false
	}
	return *best, true
}

func (s *MemoryStore) Put(key string, dataType DataType, location string, payload []byte, ttl time.Duration) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &Entry{
		Key:       key,
		DataType:  dataType,
		Location:  location,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *MemoryStore) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if now.After(e.ExpiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func leadingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
