package core

import (
	"log"

	"github.com/automoto/hitmarkers/damage"
	"github.com/automoto/hitmarkers/shared/gamemath"
	"github.com/automoto/hitmarkers/shared/netcomponents"
	"github.com/automoto/hitmarkers/shared/netconfig"
	"github.com/yohamta/donburi"
)

// effectSpawner turns engine effect requests into replicated hit digit
// entities. Handles are never reused.
type effectSpawner struct {
	world   donburi.World
	repl    replicator
	next    damage.Handle
	handles map[damage.Handle]donburi.Entity
}

func newEffectSpawner(world donburi.World, repl replicator) *effectSpawner {
	return &effectSpawner{
		world:   world,
		repl:    repl,
		handles: make(map[damage.Handle]donburi.Entity),
	}
}

func (e *effectSpawner) Spawn(desc damage.EffectDescriptor) (damage.Handle, bool) {
	if desc.Digit < 0 || desc.Digit > 9 {
		return 0, false
	}

	entity := e.world.Create(netcomponents.NetHitDigit, netcomponents.NetPosition)
	entry := e.world.Entry(entity)
	netcomponents.NetHitDigit.Set(entry, &netcomponents.NetHitDigitData{
		OwnerNetworkID: uint(desc.Owner),
		Digit:          desc.Digit,
		Tier:           desc.Tier,
		Critical:       desc.Critical,
		RightAligned:   desc.RightAligned,
		Effect:         netconfig.EffectName(desc.Digit, desc.RightAligned, desc.Critical, desc.Tier),
	})
	netcomponents.NetPosition.Set(entry, &netcomponents.NetPositionData{})

	if err := e.repl.TrackEffect(e.world, &entity); err != nil {
		log.Printf("[server] failed to sync hit digit: %v", err)
		if e.world.Valid(entity) {
			e.world.Remove(entity)
		}
		return 0, false
	}

	e.next++
	e.handles[e.next] = entity
	return e.next, true
}

func (e *effectSpawner) Teleport(h damage.Handle, pos gamemath.Vec3) {
	entry, ok := e.entry(h)
	if !ok {
		return
	}
	p := netcomponents.NetPosition.Get(entry)
	p.X, p.Y, p.Z = pos.X, pos.Y, pos.Z
}

func (e *effectSpawner) Activate(h damage.Handle) {
	entry, ok := e.entry(h)
	if !ok {
		return
	}
	netcomponents.NetHitDigit.Get(entry).Active = true
}

func (e *effectSpawner) Remove(h damage.Handle) {
	entity, ok := e.handles[h]
	if !ok {
		return
	}
	delete(e.handles, h)
	if e.world.Valid(entity) {
		e.world.Remove(entity)
	}
}

// Live returns the number of hit digit entities currently spawned.
func (e *effectSpawner) Live() int {
	return len(e.handles)
}

func (e *effectSpawner) entry(h damage.Handle) (*donburi.Entry, bool) {
	entity, ok := e.handles[h]
	if !ok || !e.world.Valid(entity) {
		return nil, false
	}
	return e.world.Entry(entity), true
}
