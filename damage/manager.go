package damage

import (
	"math/rand/v2"

	"github.com/automoto/hitmarkers/config"
	"github.com/automoto/hitmarkers/shared/gamemath"
	"github.com/automoto/hitmarkers/shared/netconfig"
)

// Stats counts what the manager has done since it was created.
type Stats struct {
	Hits          int // events accepted by OnDamage
	Displays      int // damage values laid out
	Dropped       int // events or displays skipped for missing positions
	Spawned       int // effects created
	SpawnFailures int // effects the spawner could not create
	Removed       int // effects removed, by expiry or teardown
}

// Manager is the hit number engine. It owns the aggregation table, the effect
// registry and the tick clock.
type Manager struct {
	classifier *Classifier
	table      *AggregationTable
	registry   *Registry
	sched      Scheduler

	positions PositionSource
	effects   EffectSpawner
	rng       *rand.Rand
	layout    gamemath.LayoutParams

	windowTicks  uint64
	primaryTicks uint64
	childTicks   uint64

	stats Stats

	// Logf receives diagnostic messages. Nil disables logging.
	Logf func(format string, args ...any)
}

// NewManager builds an engine for a host ticking tickRate times per second.
// A nil rng is replaced by a randomly seeded one.
func NewManager(cfg config.HitsConfig, tickRate int, positions PositionSource, effects EffectSpawner, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Manager{
		classifier:   NewClassifier(cfg.BurstWeapons),
		table:        NewAggregationTable(),
		registry:     NewRegistry(),
		positions:    positions,
		effects:      effects,
		rng:          rng,
		layout:       cfg.Layout(),
		windowTicks:  config.Ticks(cfg.AggregationDelay, tickRate),
		primaryTicks: config.Ticks(cfg.PrimaryLifetime, tickRate),
		childTicks:   config.Ticks(cfg.ChildLifetime, tickRate),
	}
}

// OnDamage handles one hit. Instant hits are displayed right away; burst hits
// join the attacker/victim window and are displayed when it expires.
// Negative amounts count as zero.
func (m *Manager) OnDamage(ev Event) {
	amount := ev.Amount
	if amount < 0 {
		amount = 0
	}

	if m.classifier.Classify(ev.Weapon) == Instant {
		victimPos, ok := m.positions.Position(ev.Victim)
		if !ok {
			m.stats.Dropped++
			return
		}
		m.stats.Hits++
		m.display(DisplayRequest{
			Attacker: ev.Attacker,
			Victim:   ev.Victim,
			Position: victimPos,
			Amount:   amount,
			Critical: ev.Critical,
		})
		return
	}

	m.recordHit(ev.Attacker, ev.Victim, amount, ev.Critical)
}

func (m *Manager) recordHit(attacker, victim PlayerID, amount int, critical bool) {
	var anchor gamemath.Vec3
	if !m.table.IsOpen(attacker, victim) {
		pos, ok := m.positions.Position(victim)
		if !ok {
			m.stats.Dropped++
			return
		}
		// The attacker is checked again at expiry; a window is never opened
		// for one that has no position now.
		if _, ok := m.positions.Position(attacker); !ok {
			m.stats.Dropped++
			return
		}
		anchor = pos
	}
	m.stats.Hits++

	expiry := m.sched.Now() + m.windowTicks
	window, opened := m.table.RecordHit(attacker, victim, amount, critical, anchor, expiry)
	if opened {
		m.sched.Schedule(expiry, actionWindowExpiry, pairKey{attacker, victim}, window)
	}
}

// Advance moves the clock one tick and fires everything that became due.
// Window expiries resolve before effect expiries. Hits reported after Advance
// returns belong to the next window, even when they share a tick with an
// expiry that just fired.
func (m *Manager) Advance() {
	due := m.sched.Advance()
	if len(due) == 0 {
		return
	}

	for _, a := range due {
		if a.kind != actionWindowExpiry {
			continue
		}
		if req, ok := m.table.Expire(a.pair.attacker, a.pair.victim, a.target); ok {
			m.display(req)
		}
	}

	now := m.sched.Now()
	for _, a := range due {
		if a.kind != actionEffectExpiry {
			continue
		}
		rec, ok := m.registry.Remove(a.target)
		if !ok {
			continue
		}
		m.effects.Remove(rec.Handle)
		m.stats.Removed++

		if rec.Tier == netconfig.TierPrimary {
			m.spawn(rec.Owner, netconfig.TierChild, rec.Digit, rec.Position, rec.Critical, rec.RightAligned, now+m.childTicks)
		}
	}
}

// display lays out req and spawns one primary effect per digit.
func (m *Manager) display(req DisplayRequest) {
	attackerPos, ok := m.positions.Position(req.Attacker)
	if !ok {
		m.stats.Dropped++
		return
	}
	m.stats.Displays++

	digits := gamemath.DecomposeDigits(req.Amount)
	ducking := m.positions.IsCrouching(req.Victim)
	slots := gamemath.Layout(len(digits), attackerPos, req.Position, ducking, req.Critical, m.layout, m.rng)

	expiry := m.sched.Now() + m.primaryTicks
	for i, slot := range slots {
		digit := digits[len(digits)-1-i]
		m.spawn(req.Attacker, netconfig.TierPrimary, digit, slot.Position, req.Critical, slot.RightAligned, expiry)
	}
}

func (m *Manager) spawn(owner PlayerID, tier netconfig.EffectTier, digit int, pos gamemath.Vec3, critical, right bool, expiry uint64) {
	h, ok := m.effects.Spawn(EffectDescriptor{
		Owner:        owner,
		Digit:        digit,
		RightAligned: right,
		Critical:     critical,
		Tier:         tier,
	})
	if !ok {
		m.stats.SpawnFailures++
		m.logf("[hits] spawn failed: owner=%d digit=%d tier=%s", owner, digit, tier)
		return
	}
	m.effects.Teleport(h, pos)
	m.effects.Activate(h)

	id := m.registry.Add(EffectRecord{
		Owner:        owner,
		Tier:         tier,
		Digit:        digit,
		Position:     pos,
		Critical:     critical,
		RightAligned: right,
		ExpiryTick:   expiry,
		Handle:       h,
	})
	m.stats.Spawned++
	m.sched.Schedule(expiry, actionEffectExpiry, pairKey{}, id)
}

// OnPlayerConnected discards anything left over under id. Player ids are
// reused by hosts, so a new player must not inherit a previous owner's state.
func (m *Manager) OnPlayerConnected(id PlayerID) {
	m.OnPlayerExit(id)
}

// OnPlayerExit removes every effect owned by attacker and discards its open
// windows without waiting for them to expire. Safe to call repeatedly.
func (m *Manager) OnPlayerExit(attacker PlayerID) {
	recs := m.registry.TakeOwner(attacker)
	windows := m.table.DropAttacker(attacker)
	if len(recs) == 0 && windows == 0 {
		return
	}
	for _, rec := range recs {
		m.effects.Remove(rec.Handle)
	}
	m.stats.Removed += len(recs)
	m.sched.Retain(m.isLive)
	m.logf("[hits] player %d cleaned up: %d effects, %d windows", attacker, len(recs), windows)
}

// Shutdown removes every live effect and discards every open window.
func (m *Manager) Shutdown() {
	recs := m.registry.TakeAll()
	windows := m.table.Clear()
	for _, rec := range recs {
		m.effects.Remove(rec.Handle)
	}
	m.stats.Removed += len(recs)
	m.sched.Retain(m.isLive)
	if len(recs) > 0 || windows > 0 {
		m.logf("[hits] shutdown: removed %d effects, discarded %d windows", len(recs), windows)
	}
}

func (m *Manager) isLive(a action) bool {
	switch a.kind {
	case actionWindowExpiry:
		return m.table.live(a.pair, a.target)
	case actionEffectExpiry:
		_, ok := m.registry.records[a.target]
		return ok
	}
	return false
}

func (m *Manager) logf(format string, args ...any) {
	if m.Logf != nil {
		m.Logf(format, args...)
	}
}

// Now returns the current tick.
func (m *Manager) Now() uint64 { return m.sched.Now() }

// Window returns the open window for a pair.
func (m *Manager) Window(attacker, victim PlayerID) (AggregationEntry, bool) {
	return m.table.Get(attacker, victim)
}

// OpenWindows returns the number of open windows.
func (m *Manager) OpenWindows() int { return m.table.Len() }

// Effects returns the live effects owned by owner in creation order.
func (m *Manager) Effects(owner PlayerID) []EffectRecord { return m.registry.OwnedBy(owner) }

// LiveEffects returns every live effect in creation order.
func (m *Manager) LiveEffects() []EffectRecord { return m.registry.All() }

// Classify exposes the weapon classification the manager uses.
func (m *Manager) Classify(weapon string) Category { return m.classifier.Classify(weapon) }

// Stats returns the running counters.
func (m *Manager) Stats() Stats { return m.stats }
