package damage

import "container/heap"

type actionKind uint8

const (
	actionWindowExpiry actionKind = iota
	actionEffectExpiry
)

// action is a unit of work due at a tick. target is the window id for
// window expiries and the record id for effect expiries.
type action struct {
	tick   uint64
	seq    uint64
	kind   actionKind
	pair   pairKey
	target uint64
}

// actionQueue is a min-heap ordered by tick, then by scheduling order.
type actionQueue []action

func (q actionQueue) Len() int { return len(q) }

func (q actionQueue) Less(i, j int) bool {
	if q[i].tick != q[j].tick {
		return q[i].tick < q[j].tick
	}
	return q[i].seq < q[j].seq
}

func (q actionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *actionQueue) Push(x any) { *q = append(*q, x.(action)) }

func (q *actionQueue) Pop() any {
	old := *q
	n := len(old)
	a := old[n-1]
	*q = old[:n-1]
	return a
}

// Scheduler owns the tick clock and the queue of pending actions.
type Scheduler struct {
	now   uint64
	seq   uint64
	queue actionQueue
}

// Now returns the current tick.
func (s *Scheduler) Now() uint64 {
	return s.now
}

// Schedule queues an action for tick. Ticks at or before Now fire on the next
// Advance.
func (s *Scheduler) Schedule(tick uint64, kind actionKind, pair pairKey, target uint64) {
	s.seq++
	heap.Push(&s.queue, action{tick: tick, seq: s.seq, kind: kind, pair: pair, target: target})
}

// Advance moves the clock forward one tick and returns every action that is
// now due, in firing order. The returned slice is detached from the queue so
// callers may schedule while walking it.
func (s *Scheduler) Advance() []action {
	s.now++
	var due []action
	for len(s.queue) > 0 && s.queue[0].tick <= s.now {
		due = append(due, heap.Pop(&s.queue).(action))
	}
	return due
}

// Pending returns the number of queued actions, stale ones included.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Retain drops queued actions for which keep returns false.
func (s *Scheduler) Retain(keep func(action) bool) {
	kept := s.queue[:0]
	for _, a := range s.queue {
		if keep(a) {
			kept = append(kept, a)
		}
	}
	clear(s.queue[len(kept):])
	s.queue = kept
	heap.Init(&s.queue)
}
