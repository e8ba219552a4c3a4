// Package prefs stores per-user preferences.
package prefs

import (
	"fmt"
	"sync"

	"github.com/chatweather/weatherbot/internal/weather"
)

// Prefs are the settings a user can change.
type Prefs struct {
	UserID          string        `json:"userId"`
	Units           weather.Units `json:"units"`
	DefaultLocation string        `json:"defaultLocation"`
	Language        string        `json:"language"`
}

// Store is the per-user preference store.
type Store interface {
	// Get returns the user's preferences, falling back to defaults for
	// unknown users.
	Get(userID string) Prefs
	SetUnits(userID string, units weather.Units) error
	SetDefaultLocation(userID string, location string) error
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]Prefs
	defaults Prefs
}

// NewMemoryStore creates a store with the given default units and language.
func NewMemoryStore(defaultUnits weather.Units, defaultLanguage string) *MemoryStore {
	return &MemoryStore{
		users: make(map[string]Prefs),
		defaults: Prefs{
			Units:    defaultUnits,
			Language: defaultLanguage,
		},
	}
}

func (s *MemoryStore) Get(userID string) Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.users[userID]; ok {
		return p
	}
	p := s.defaults
	p.UserID = userID
	return p
}

func (s *MemoryStore) SetUnits(userID string, units weather.Units) error {
	if !units.Valid() {
		return fmt.Errorf("unsupported units %q", units)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.lookup(userID)
	p.Units = units
	s.users[userID] = p
	return nil
}

func (s *MemoryStore) SetDefaultLocation(userID string, location string) error {
	if location == "" {
		return fmt.Errorf("default location must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.lookup(userID)
	p.DefaultLocation = location
	s.users[userID] = p
	return nil
}

// lookup must be called with the write lock held.
func (s *MemoryStore) lookup(userID string) Prefs {
	if p, ok := s.users[userID]; ok {
		return p
	}
	p := s.defaults
	p.UserID = userID
	return p
}
