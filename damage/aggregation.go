package damage

import (
	"sort"

	"github.com/automoto/hitmarkers/shared/gamemath"
)

type pairKey struct {
	attacker PlayerID
	victim   PlayerID
}

// AggregationEntry is the running sum of a burst against one victim. An entry
// is open exactly while it is in the table.
type AggregationEntry struct {
	Attacker   PlayerID
	Victim     PlayerID
	Total      int
	Critical   bool
	Anchor     gamemath.Vec3 // victim position when the window opened
	ExpiryTick uint64

	window uint64
}

// AggregationTable holds at most one open window per attacker/victim pair.
type AggregationTable struct {
	entries    map[pairKey]*AggregationEntry
	nextWindow uint64
}

func NewAggregationTable() *AggregationTable {
	return &AggregationTable{entries: make(map[pairKey]*AggregationEntry)}
}

// IsOpen reports whether the pair has an open window.
func (t *AggregationTable) IsOpen(attacker, victim PlayerID) bool {
	_, ok := t.entries[pairKey{attacker, victim}]
	return ok
}

// RecordHit adds a hit to the pair's window, opening one at expiry if none is
// open. anchor is only used when a window opens. The returned window id is
// what the expiry action must present to Expire.
func (t *AggregationTable) RecordHit(attacker, victim PlayerID, amount int, critical bool, anchor gamemath.Vec3, expiry uint64) (window uint64, opened bool) {
	if amount < 0 {
		amount = 0
	}
	key := pairKey{attacker, victim}
	if e, ok := t.entries[key]; ok {
		e.Total += amount
		e.Critical = e.Critical || critical
		return e.window, false
	}

	t.nextWindow++
	t.entries[key] = &AggregationEntry{
		Attacker:   attacker,
		Victim:     victim,
		Total:      amount,
		Critical:   critical,
		Anchor:     anchor,
		ExpiryTick: expiry,
		window:     t.nextWindow,
	}
	return t.nextWindow, true
}

// Expire closes the window and deletes it. A request is returned only when
// the window summed to more than zero. Expire is a no-op for a window that was
// already discarded.
func (t *AggregationTable) Expire(attacker, victim PlayerID, window uint64) (DisplayRequest, bool) {
	key := pairKey{attacker, victim}
	e, ok := t.entries[key]
	if !ok || e.window != window {
		return DisplayRequest{}, false
	}
	delete(t.entries, key)

	if e.Total <= 0 {
		return DisplayRequest{}, false
	}
	return DisplayRequest{
		Attacker: attacker,
		Victim:   victim,
		Position: e.Anchor,
		Amount:   e.Total,
		Critical: e.Critical,
	}, true
}

// Get returns a copy of the pair's open window.
func (t *AggregationTable) Get(attacker, victim PlayerID) (AggregationEntry, bool) {
	e, ok := t.entries[pairKey{attacker, victim}]
	if !ok {
		return AggregationEntry{}, false
	}
	return *e, true
}

// live reports whether window is still the pair's current window.
func (t *AggregationTable) live(key pairKey, window uint64) bool {
	e, ok := t.entries[key]
	return ok && e.window == window
}

// DropAttacker discards every window opened by attacker and returns how many
// were discarded.
func (t *AggregationTable) DropAttacker(attacker PlayerID) int {
	var keys []pairKey
	for k := range t.entries {
		if k.attacker == attacker {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		delete(t.entries, k)
	}
	return len(keys)
}

// Clear discards every window.
func (t *AggregationTable) Clear() int {
	n := len(t.entries)
	clear(t.entries)
	return n
}

// Len returns the number of open windows.
func (t *AggregationTable) Len() int {
	return len(t.entries)
}

// Entries returns copies of all open windows ordered by attacker then victim.
func (t *AggregationTable) Entries() []AggregationEntry {
	out := make([]AggregationEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attacker != out[j].Attacker {
			return out[i].Attacker < out[j].Attacker
		}
		return out[i].Victim < out[j].Victim
	})
	return out
}
