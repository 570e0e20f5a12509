package damage

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/automoto/hitmarkers/config"
	"github.com/automoto/hitmarkers/shared/gamemath"
)

// testTickRate gives 2-tick windows, 10-tick primaries and 50-tick children.
const testTickRate = 20

type fakePositions struct {
	pos    map[PlayerID]gamemath.Vec3
	crouch map[PlayerID]bool
}

func newFakePositions() *fakePositions {
	return &fakePositions{
		pos:    make(map[PlayerID]gamemath.Vec3),
		crouch: make(map[PlayerID]bool),
	}
}

func (f *fakePositions) Position(id PlayerID) (gamemath.Vec3, bool) {
	p, ok := f.pos[id]
	return p, ok
}

func (f *fakePositions) IsCrouching(id PlayerID) bool {
	return f.crouch[id]
}

type spawnedEffect struct {
	desc      EffectDescriptor
	pos       gamemath.Vec3
	activated bool
	removed   bool
}

type fakeSpawner struct {
	next    Handle
	effects map[Handle]*spawnedEffect
	order   []Handle
	fail    bool
	removes int
}

func newFakeSpawner() *fakeSpawner {
	return &fakeSpawner{effects: make(map[Handle]*spawnedEffect)}
}

func (f *fakeSpawner) Spawn(desc EffectDescriptor) (Handle, bool) {
	if f.fail {
		return 0, false
	}
	f.next++
	f.effects[f.next] = &spawnedEffect{desc: desc}
	f.order = append(f.order, f.next)
	return f.next, true
}

func (f *fakeSpawner) Teleport(h Handle, pos gamemath.Vec3) {
	if e, ok := f.effects[h]; ok {
		e.pos = pos
	}
}

func (f *fakeSpawner) Activate(h Handle) {
	if e, ok := f.effects[h]; ok {
		e.activated = true
	}
}

func (f *fakeSpawner) Remove(h Handle) {
	f.removes++
	if e, ok := f.effects[h]; ok {
		e.removed = true
	}
}

// alive returns the handles not yet removed, in spawn order.
func (f *fakeSpawner) alive() []Handle {
	var out []Handle
	for _, h := range f.order {
		if !f.effects[h].removed {
			out = append(out, h)
		}
	}
	return out
}

type testRig struct {
	m       *Manager
	pos     *fakePositions
	spawner *fakeSpawner
	seed    [2]uint64
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	cfg := config.DefaultHits()
	cfg.AggregationDelay = 100 * time.Millisecond
	cfg.PrimaryLifetime = 500 * time.Millisecond
	cfg.ChildLifetime = 2500 * time.Millisecond

	r := &testRig{
		pos:     newFakePositions(),
		spawner: newFakeSpawner(),
		seed:    [2]uint64{11, 22},
	}
	r.m = NewManager(cfg, testTickRate, r.pos, r.spawner, rand.New(rand.NewPCG(r.seed[0], r.seed[1])))
	return r
}

// freshRand returns an rng in the same state the rig's manager started with.
func (r *testRig) freshRand() *rand.Rand {
	return rand.New(rand.NewPCG(r.seed[0], r.seed[1]))
}

func (r *testRig) advance(n int) {
	for i := 0; i < n; i++ {
		r.m.Advance()
	}
}
