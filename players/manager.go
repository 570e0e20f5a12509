// Package players tracks who may see hit numbers and who has them turned on.
package players

import (
	"fmt"
	"log"

	"github.com/automoto/hitmarkers/damage"
)

type playerState struct {
	name    string
	access  bool
	enabled bool
}

// Manager holds per-player access grants and display toggles. Toggles are
// remembered across sessions by player name.
type Manager struct {
	freeAccess bool
	store      Store
	saved      map[string]bool
	players    map[damage.PlayerID]*playerState
}

// NewManager loads saved toggles from store. With freeAccess every player
// may use hit numbers without an explicit grant.
func NewManager(freeAccess bool, store Store) (*Manager, error) {
	saved, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return &Manager{
		freeAccess: freeAccess,
		store:      store,
		saved:      saved,
		players:    make(map[damage.PlayerID]*playerState),
	}, nil
}

// OnPlayerConnected registers a player with no access grant and their saved
// toggle (on by default).
func (m *Manager) OnPlayerConnected(id damage.PlayerID, name string) {
	enabled, ok := m.saved[name]
	if !ok {
		enabled = true
	}
	m.players[id] = &playerState{name: name, enabled: enabled}
}

func (m *Manager) OnPlayerDisconnected(id damage.PlayerID) {
	delete(m.players, id)
}

// HasAccess reports whether the player may use hit numbers.
func (m *Manager) HasAccess(id damage.PlayerID) bool {
	if m.freeAccess {
		return true
	}
	p, ok := m.players[id]
	return ok && p.access
}

func (m *Manager) GiveAccess(id damage.PlayerID) {
	if p, ok := m.players[id]; ok {
		p.access = true
	}
}

func (m *Manager) TakeAccess(id damage.PlayerID) {
	if p, ok := m.players[id]; ok {
		p.access = false
	}
}

// IsEnabled reports the player's toggle. Unknown players count as enabled.
func (m *Manager) IsEnabled(id damage.PlayerID) bool {
	p, ok := m.players[id]
	return !ok || p.enabled
}

// SetEnabled sets and saves the player's toggle.
func (m *Manager) SetEnabled(id damage.PlayerID, enabled bool) {
	p, ok := m.players[id]
	if !ok {
		return
	}
	p.enabled = enabled
	m.persist(p)
}

// Toggle flips the player's display. It reports false in allowed when the
// player has no access, leaving the toggle untouched.
func (m *Manager) Toggle(id damage.PlayerID) (enabled, allowed bool) {
	if !m.HasAccess(id) {
		return m.IsEnabled(id), false
	}
	p, ok := m.players[id]
	if !ok {
		return true, false
	}
	p.enabled = !p.enabled
	m.persist(p)
	return p.enabled, true
}

// ShouldDisplay reports whether hits dealt by id should produce numbers.
func (m *Manager) ShouldDisplay(id damage.PlayerID) bool {
	return m.HasAccess(id) && m.IsEnabled(id)
}

func (m *Manager) persist(p *playerState) {
	if p.name == "" {
		return
	}
	m.saved[p.name] = p.enabled
	if err := m.store.Save(m.saved); err != nil {
		log.Printf("[prefs] could not save toggle for %q: %v", p.name, err)
	}
}
