package damage

import (
	"testing"

	"github.com/automoto/hitmarkers/shared/gamemath"
	"github.com/automoto/hitmarkers/shared/netconfig"
)

const (
	attackerA PlayerID = 1
	victimV   PlayerID = 2
	victimW   PlayerID = 3
)

func (r *testRig) placeDefaults() {
	r.pos.pos[attackerA] = gamemath.Vec3{X: 0, Y: 0, Z: 0}
	r.pos.pos[victimV] = gamemath.Vec3{X: 300, Y: 0, Z: 0}
	r.pos.pos[victimW] = gamemath.Vec3{X: 0, Y: 400, Z: 0}
}

func TestInstantHitDisplaysImmediately(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 127, Weapon: "ak47"})

	effects := r.m.Effects(attackerA)
	if len(effects) != 3 {
		t.Fatalf("expected 3 digit effects, got %d", len(effects))
	}
	want := []int{1, 2, 7}
	for i, e := range effects {
		if e.Digit != want[i] {
			t.Errorf("effect %d digit = %d, want %d", i, e.Digit, want[i])
		}
		if e.Tier != netconfig.TierPrimary {
			t.Errorf("effect %d tier = %v, want primary", i, e.Tier)
		}
		if e.ExpiryTick != 10 {
			t.Errorf("effect %d expiry = %d, want 10", i, e.ExpiryTick)
		}
		spawned := r.spawner.effects[e.Handle]
		if !spawned.activated || spawned.pos != e.Position {
			t.Errorf("effect %d not teleported/activated: %+v", i, spawned)
		}
	}

	slots := gamemath.Layout(3, r.pos.pos[attackerA], r.pos.pos[victimV], false, false, r.m.layout, r.freshRand())
	for i, e := range effects {
		if e.Position != slots[i].Position || e.RightAligned != slots[i].RightAligned {
			t.Errorf("effect %d at %+v right=%v, want %+v right=%v",
				i, e.Position, e.RightAligned, slots[i].Position, slots[i].RightAligned)
		}
	}
}

func TestBurstAggregatesIntoOneDisplay(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()
	anchor := r.pos.pos[victimV]

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 10, Weapon: "nova"})
	r.pos.pos[victimV] = gamemath.Vec3{X: 310, Y: 5} // victim moves between pellets
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 20, Critical: true, Weapon: "nova"})
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 5, Weapon: "nova"})

	if len(r.spawner.order) != 0 {
		t.Fatal("burst hits must not display before the window expires")
	}
	if r.m.OpenWindows() != 1 {
		t.Fatalf("OpenWindows = %d, want 1", r.m.OpenWindows())
	}

	r.advance(1)
	if len(r.spawner.order) != 0 {
		t.Fatal("window fired early")
	}
	r.advance(1)

	effects := r.m.Effects(attackerA)
	if len(effects) != 2 || effects[0].Digit != 3 || effects[1].Digit != 5 {
		t.Fatalf("effects = %+v, want digits 3 then 5", effects)
	}
	for _, e := range effects {
		if !e.Critical {
			t.Error("aggregated display should be critical")
		}
	}
	if r.m.OpenWindows() != 0 {
		t.Errorf("window should be closed, OpenWindows = %d", r.m.OpenWindows())
	}

	slots := gamemath.Layout(2, r.pos.pos[attackerA], anchor, false, true, r.m.layout, r.freshRand())
	for i, e := range effects {
		if e.Position != slots[i].Position {
			t.Errorf("effect %d at %+v, want %+v (anchored at first hit)", i, e.Position, slots[i].Position)
		}
	}
	if st := r.m.Stats(); st.Displays != 1 || st.Hits != 3 {
		t.Errorf("stats = %+v, want 1 display from 3 hits", st)
	}
}

func TestWindowsArePerVictim(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 8, Weapon: "xm1014"})
	r.advance(1)
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimW, Amount: 6, Weapon: "xm1014"})

	r.advance(1) // V expires at 2, W at 3
	if _, ok := r.m.Window(attackerA, victimV); ok {
		t.Error("V window should have expired")
	}
	w, ok := r.m.Window(attackerA, victimW)
	if !ok || w.Total != 6 || w.ExpiryTick != 3 {
		t.Fatalf("W window = %+v, %v", w, ok)
	}
	if effects := r.m.Effects(attackerA); len(effects) != 1 || effects[0].Digit != 8 {
		t.Fatalf("effects after V expiry = %+v", effects)
	}

	r.advance(1)
	effects := r.m.Effects(attackerA)
	if len(effects) != 2 || effects[1].Digit != 6 {
		t.Fatalf("effects after W expiry = %+v", effects)
	}
}

func TestHitInExpiryTickOpensNewWindow(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 4, Weapon: "mag7"})
	r.advance(1)
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 3, Weapon: "mag7"})
	r.advance(1) // tick 2: window fires with 7

	// Delivered after the expiry pass of tick 2.
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 9, Weapon: "mag7"})

	effects := r.m.Effects(attackerA)
	if len(effects) != 1 || effects[0].Digit != 7 {
		t.Fatalf("first window effects = %+v, want single 7", effects)
	}
	w, ok := r.m.Window(attackerA, victimV)
	if !ok || w.Total != 9 || w.ExpiryTick != 4 {
		t.Fatalf("late hit window = %+v, %v, want fresh window of 9 expiring at 4", w, ok)
	}
}

func TestEffectExpiryIsTickExact(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 5, Weapon: "usp"})
	primary := r.m.Effects(attackerA)[0]
	if primary.ExpiryTick != 10 {
		t.Fatalf("primary expiry = %d, want 10", primary.ExpiryTick)
	}

	r.advance(9)
	if r.m.Now() != 9 {
		t.Fatalf("Now = %d", r.m.Now())
	}
	if got := r.m.Effects(attackerA); len(got) != 1 || got[0].ID != primary.ID {
		t.Fatalf("primary should still be live at tick 9: %+v", got)
	}

	r.advance(1)
	got := r.m.Effects(attackerA)
	if len(got) != 1 {
		t.Fatalf("expected exactly one child at tick 10, got %+v", got)
	}
	child := got[0]
	if child.ID == primary.ID || child.Tier != netconfig.TierChild {
		t.Fatalf("expected child record, got %+v", child)
	}
	if !r.spawner.effects[primary.Handle].removed {
		t.Error("primary effect resource was not removed")
	}
	if child.Digit != primary.Digit || child.Position != primary.Position ||
		child.Critical != primary.Critical || child.RightAligned != primary.RightAligned {
		t.Errorf("child %+v does not mirror primary %+v", child, primary)
	}
	if child.ExpiryTick != 60 || child.ExpiryTick <= primary.ExpiryTick {
		t.Errorf("child expiry = %d, want 60", child.ExpiryTick)
	}
	desc := r.spawner.effects[child.Handle].desc
	if desc.Tier != netconfig.TierChild || desc.Digit != 5 || desc.Owner != attackerA {
		t.Errorf("child descriptor = %+v", desc)
	}

	r.advance(49)
	if len(r.m.Effects(attackerA)) != 1 {
		t.Fatal("child should still be live at tick 59")
	}
	r.advance(1)
	if got := r.m.Effects(attackerA); len(got) != 0 {
		t.Fatalf("child should be gone at tick 60: %+v", got)
	}
	if alive := r.spawner.alive(); len(alive) != 0 {
		t.Errorf("leaked effect handles: %v", alive)
	}
}

func TestChildSpawnFailure(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 42, Weapon: "deagle"})
	if len(r.m.Effects(attackerA)) != 2 {
		t.Fatal("expected two primaries")
	}

	r.spawner.fail = true
	r.advance(10)

	if got := r.m.Effects(attackerA); len(got) != 0 {
		t.Errorf("no child should exist when spawning fails: %+v", got)
	}
	if st := r.m.Stats(); st.SpawnFailures != 2 || st.Removed != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestPrimarySpawnFailureSkipsDigit(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()
	r.spawner.fail = true

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 99, Weapon: "m4a1"})
	if len(r.m.LiveEffects()) != 0 {
		t.Fatal("failed spawns must not create records")
	}

	r.spawner.fail = false
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 1, Weapon: "m4a1"})
	if len(r.m.LiveEffects()) != 1 {
		t.Fatal("later spawns should still work")
	}
}

func TestMissingPositionsAbort(t *testing.T) {
	r := newTestRig(t)
	r.pos.pos[attackerA] = gamemath.Vec3{}

	// No victim body: nothing happens, no window opens.
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 10, Weapon: "ak47"})
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 10, Weapon: "nova"})
	if r.m.OpenWindows() != 0 || len(r.spawner.order) != 0 {
		t.Fatal("missing victim must abort without state")
	}

	// Attacker disappears before the window expires: entry is still deleted.
	r.pos.pos[victimV] = gamemath.Vec3{X: 10}
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 10, Weapon: "nova"})
	delete(r.pos.pos, attackerA)
	r.advance(2)
	if r.m.OpenWindows() != 0 {
		t.Error("expired window must be deleted even when display is dropped")
	}
	if len(r.spawner.order) != 0 {
		t.Error("display without attacker position must spawn nothing")
	}
	if st := r.m.Stats(); st.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", st.Dropped)
	}
}

func TestNegativeAmountClampsToZero(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 12, Weapon: "sawedoff"})
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: -50, Weapon: "sawedoff"})
	if w, _ := r.m.Window(attackerA, victimV); w.Total != 12 {
		t.Errorf("Total = %d, want 12", w.Total)
	}

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimW, Amount: -3, Weapon: "glock"})
	effects := r.m.Effects(attackerA)
	if len(effects) != 1 || effects[0].Digit != 0 {
		t.Errorf("negative instant hit should show a single 0, got %+v", effects)
	}
}

func TestZeroBurstShowsNothing(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 0, Weapon: "nova"})
	r.advance(2)
	if len(r.spawner.order) != 0 || r.m.OpenWindows() != 0 {
		t.Error("zero total window should close silently")
	}
}

func TestPlayerExitTeardown(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()
	const other PlayerID = 9
	r.pos.pos[other] = gamemath.Vec3{X: 50}

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 25, Weapon: "ak47"})
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimW, Amount: 30, Weapon: "nova"})
	r.m.OnDamage(Event{Attacker: other, Victim: victimV, Amount: 7, Weapon: "ak47"})
	r.m.OnDamage(Event{Attacker: other, Victim: victimW, Amount: 8, Weapon: "nova"})

	r.m.OnPlayerExit(attackerA)

	if len(r.m.Effects(attackerA)) != 0 {
		t.Error("attacker effects survived teardown")
	}
	if _, ok := r.m.Window(attackerA, victimW); ok {
		t.Error("attacker window survived teardown")
	}
	for _, h := range r.spawner.order {
		e := r.spawner.effects[h]
		if e.desc.Owner == attackerA && !e.removed {
			t.Errorf("handle %d owned by attacker not removed", h)
		}
		if e.desc.Owner == other && e.removed {
			t.Errorf("handle %d owned by other player removed", h)
		}
	}

	removes := r.spawner.removes
	stats := r.m.Stats()
	r.m.OnPlayerExit(attackerA)
	r.m.OnPlayerExit(PlayerID(1234))
	if r.spawner.removes != removes || r.m.Stats() != stats {
		t.Error("repeated teardown changed state")
	}

	// The other player's state keeps running normally.
	r.advance(2)
	if got := r.m.Effects(other); len(got) != 2 {
		t.Fatalf("other player effects = %+v, want instant 7 plus burst 8", got)
	}
	r.advance(60)
	if len(r.m.LiveEffects()) != 0 {
		t.Errorf("effects left after all lifetimes: %+v", r.m.LiveEffects())
	}
	if len(r.spawner.alive()) != 0 {
		t.Errorf("leaked handles: %v", r.spawner.alive())
	}
}

func TestTeardownDropsScheduledWork(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 15, Weapon: "nova"})
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimW, Amount: 3, Weapon: "p250"})
	if r.m.sched.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", r.m.sched.Pending())
	}
	r.m.OnPlayerExit(attackerA)
	if r.m.sched.Pending() != 0 {
		t.Errorf("Pending after teardown = %d, want 0", r.m.sched.Pending())
	}

	// A new window for the same pair is not disturbed by the old one.
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 6, Weapon: "nova"})
	r.advance(2)
	if got := r.m.Effects(attackerA); len(got) != 1 || got[0].Digit != 6 {
		t.Errorf("effects = %+v, want single 6", got)
	}
}

func TestOnPlayerConnectedClearsReusedID(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 5, Weapon: "ak47"})
	r.m.OnPlayerConnected(attackerA)
	if len(r.m.Effects(attackerA)) != 0 {
		t.Error("reconnecting id should start clean")
	}
}

func TestShutdown(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 11, Weapon: "ak47"})
	r.m.OnDamage(Event{Attacker: victimV, Victim: attackerA, Amount: 22, Weapon: "nova"})
	r.m.Shutdown()

	if len(r.m.LiveEffects()) != 0 || r.m.OpenWindows() != 0 {
		t.Fatal("shutdown left state behind")
	}
	if len(r.spawner.alive()) != 0 {
		t.Errorf("leaked handles: %v", r.spawner.alive())
	}
	r.m.Shutdown()
	r.advance(100)
	if len(r.spawner.order) != 2 {
		t.Errorf("nothing should spawn after shutdown, spawned %d", len(r.spawner.order))
	}
}

func TestCrouchLowersDigits(t *testing.T) {
	r := newTestRig(t)
	r.placeDefaults()
	r.pos.crouch[victimV] = true

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 1, Weapon: "ak47"})
	e := r.m.Effects(attackerA)[0]
	base, jitter := r.m.layout.HeightBase(false, true)
	h := e.Position.Z - r.pos.pos[victimV].Z
	if h < base || h >= base+jitter {
		t.Errorf("crouched height %v outside [%v, %v)", h, base, base+jitter)
	}
}

func TestMissingAttackerOpensNoWindow(t *testing.T) {
	r := newTestRig(t)
	r.pos.pos[victimV] = gamemath.Vec3{X: 50}

	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 12, Weapon: "xm1014"})
	if r.m.OpenWindows() != 0 || r.m.sched.Pending() != 0 {
		t.Fatalf("open windows=%d pending=%d, want nothing for an attacker without position",
			r.m.OpenWindows(), r.m.sched.Pending())
	}
	if st := r.m.Stats(); st.Dropped != 1 || st.Hits != 0 {
		t.Errorf("stats = %+v, want one dropped hit", st)
	}

	// Once the attacker has a body the next pellet opens a window as usual.
	r.pos.pos[attackerA] = gamemath.Vec3{}
	r.m.OnDamage(Event{Attacker: attackerA, Victim: victimV, Amount: 12, Weapon: "xm1014"})
	if w, ok := r.m.Window(attackerA, victimV); !ok || w.Total != 12 {
		t.Errorf("window = %+v, %v, want total 12", w, ok)
	}
}
