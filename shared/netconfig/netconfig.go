// Package netconfig defines lightweight types shared between the server and
// its clients for network serialization. It must stay free of engine and
// graphics dependencies so the dedicated server binary stays headless.
package netconfig

import (
	"fmt"
	"strings"
)

// EffectTier is the lifecycle stage of a hit digit effect.
type EffectTier int

const (
	TierPrimary EffectTier = iota // short pop shown on impact
	TierChild                     // longer fade that replaces the primary
)

var tierNames = map[EffectTier]string{
	TierPrimary: "primary",
	TierChild:   "child",
}

func (t EffectTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// Hitgroup values reported with damage. Only the head matters for display.
const (
	HitgroupGeneric = 0
	HitgroupHead    = 1
)

// EffectName returns the client effect asset for a digit variant, e.g.
// "hit_digit_7_fl_crit_child". Clients resolve it to a particle definition.
func EffectName(digit int, rightAligned, critical bool, tier EffectTier) string {
	var b strings.Builder
	side := "fl"
	if rightAligned {
		side = "fr"
	}
	fmt.Fprintf(&b, "hit_digit_%d_%s", digit, side)
	if critical {
		b.WriteString("_crit")
	}
	if tier == TierChild {
		b.WriteString("_child")
	}
	return b.String()
}

// ActionID represents a logical player action carried in PlayerInput.
type ActionID int

const (
	ActionNone ActionID = iota
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionCrouch
	ActionCount // Must be last - used for array sizing
)
