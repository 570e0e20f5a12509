package players

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/quasilyte/gdata"
)

// Store persists the hit number toggle per player name.
type Store interface {
	Load() (map[string]bool, error)
	Save(prefs map[string]bool) error
}

const prefsItem = "hits_prefs"

// GdataStore keeps preferences in the gdata application directory.
type GdataStore struct {
	m *gdata.Manager
}

// OpenGdataStore opens (or creates) the preference storage for app.
func OpenGdataStore(app string) (*GdataStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: app,
	})
	if err != nil {
		return nil, fmt.Errorf("open gdata %q: %w", app, err)
	}
	return &GdataStore{m: m}, nil
}

func (s *GdataStore) Load() (map[string]bool, error) {
	prefs := make(map[string]bool)
	data, err := s.m.LoadItem(prefsItem)
	if err != nil {
		log.Printf("[prefs] could not load %s, starting empty: %v", prefsItem, err)
		return prefs, nil
	}
	if len(data) == 0 {
		// Nothing saved yet
		return prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", prefsItem, err)
	}
	return prefs, nil
}

func (s *GdataStore) Save(prefs map[string]bool) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", prefsItem, err)
	}
	if err := s.m.SaveItem(prefsItem, data); err != nil {
		return fmt.Errorf("save %s: %w", prefsItem, err)
	}
	return nil
}

// MemoryStore keeps preferences in memory.
type MemoryStore struct {
	mu    sync.Mutex
	prefs map[string]bool
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]bool)}
}

func (s *MemoryStore) Load() (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.prefs))
	for k, v := range s.prefs {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Save(prefs map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = make(map[string]bool, len(prefs))
	for k, v := range prefs {
		s.prefs[k] = v
	}
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
