// Package damage turns combat hits into hit number effects: it sums shotgun
// pellets into one value, lays the digits out around the victim, and ages the
// resulting effects on the server tick.
//
// The package is not safe for concurrent use. The host calls every method
// from its game loop goroutine.
package damage

import (
	"github.com/automoto/hitmarkers/shared/gamemath"
	"github.com/automoto/hitmarkers/shared/netconfig"
)

// PlayerID identifies a connected player.
type PlayerID uint

// Event is a single hit reported by the host.
type Event struct {
	Attacker PlayerID
	Victim   PlayerID
	Amount   int
	Critical bool
	Weapon   string
}

// DisplayRequest asks for one damage value to be shown at a position.
type DisplayRequest struct {
	Attacker PlayerID
	Victim   PlayerID
	Position gamemath.Vec3
	Amount   int
	Critical bool
}

// Handle references an effect owned by the spawner.
type Handle uint64

// EffectDescriptor describes one digit effect to spawn.
type EffectDescriptor struct {
	Owner        PlayerID
	Digit        int
	RightAligned bool
	Critical     bool
	Tier         netconfig.EffectTier
}

// PositionSource answers player queries. Position reports false when the
// player has no body in the world.
type PositionSource interface {
	Position(id PlayerID) (gamemath.Vec3, bool)
	IsCrouching(id PlayerID) bool
}

// EffectSpawner creates and destroys effect resources. Spawn reports false
// when no effect could be created.
type EffectSpawner interface {
	Spawn(desc EffectDescriptor) (Handle, bool)
	Teleport(h Handle, pos gamemath.Vec3)
	Activate(h Handle)
	Remove(h Handle)
}
