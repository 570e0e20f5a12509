package damage

import "strings"

// Category is how a weapon delivers damage.
type Category uint8

const (
	Instant Category = iota // one hit, shown immediately
	Burst                   // several pellets per shot, summed before display
)

func (c Category) String() string {
	switch c {
	case Instant:
		return "instant"
	case Burst:
		return "burst"
	}
	return "unknown"
}

// Classifier maps weapon names to a Category.
type Classifier struct {
	burst map[string]struct{}
}

// NewClassifier returns a classifier treating the given weapons as Burst.
func NewClassifier(burstWeapons []string) *Classifier {
	c := &Classifier{burst: make(map[string]struct{}, len(burstWeapons))}
	for _, w := range burstWeapons {
		if n := NormalizeWeapon(w); n != "" {
			c.burst[n] = struct{}{}
		}
	}
	return c
}

// Classify returns Burst for a listed weapon and Instant for anything else.
func (c *Classifier) Classify(weapon string) Category {
	if _, ok := c.burst[NormalizeWeapon(weapon)]; ok {
		return Burst
	}
	return Instant
}

// NormalizeWeapon lower-cases a weapon name and strips the "weapon_" prefix
// some hosts report.
func NormalizeWeapon(weapon string) string {
	w := strings.ToLower(strings.TrimSpace(weapon))
	return strings.TrimPrefix(w, "weapon_")
}
