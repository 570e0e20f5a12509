package core

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/automoto/hitmarkers/config"
	"github.com/automoto/hitmarkers/damage"
	"github.com/automoto/hitmarkers/shared/leveldata"
	"github.com/automoto/hitmarkers/shared/messages"
	"github.com/automoto/hitmarkers/shared/netcomponents"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

type fakeConn struct {
	id   string
	sent []any
}

func (c *fakeConn) Id() string { return c.id }

func (c *fakeConn) SendMessage(msg any) error {
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) last() any {
	if len(c.sent) == 0 {
		return nil
	}
	return c.sent[len(c.sent)-1]
}

type testReplicator struct {
	next        damage.PlayerID
	failEffects bool
	flushes     int
}

func (r *testReplicator) TrackPlayer(donburi.World, *donburi.Entity) (damage.PlayerID, error) {
	r.next++
	return r.next, nil
}

func (r *testReplicator) TrackEffect(donburi.World, *donburi.Entity) error {
	if r.failEffects {
		return errors.New("sync unavailable")
	}
	return nil
}

func (r *testReplicator) Flush() error {
	r.flushes++
	return nil
}

// testTickRate gives 2-tick burst windows and 10-tick primaries.
const testTickRate = 20

func testOptions() Options {
	opts := Options{
		Server: config.DefaultServer(),
		Hits:   config.DefaultHits(),
		Arena:  config.DefaultArena(),
		Rand:   rand.New(rand.NewPCG(3, 4)),
	}
	opts.Server.TickRate = testTickRate
	return opts
}

func newTestServer(t *testing.T, arena *leveldata.ArenaData, mutate func(*Options)) (*Server, *testReplicator) {
	t.Helper()
	opts := testOptions()
	if mutate != nil {
		mutate(&opts)
	}
	if arena == nil {
		arena = leveldata.OpenArena(512, 512)
	}
	repl := &testReplicator{}
	s, err := newServer(opts, donburi.NewWorld(), NewServerArena("test", arena), repl)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return s, repl
}

func join(t *testing.T, s *Server, name string, bot bool) (*fakeConn, *Player) {
	t.Helper()
	c := &fakeConn{id: name}
	s.handleJoin(c, messages.JoinRequest{PlayerName: name, Bot: bot})
	p, ok := s.clients[c]
	if !ok {
		t.Fatalf("%s did not join: last message %#v", name, c.last())
	}
	return c, p
}

func hitDigits(world donburi.World) []netcomponents.NetHitDigitData {
	var out []netcomponents.NetHitDigitData
	donburi.NewQuery(filter.Contains(netcomponents.NetHitDigit)).Each(world, func(e *donburi.Entry) {
		out = append(out, *netcomponents.NetHitDigit.Get(e))
	})
	return out
}

func ticks(s *Server, n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}
