package core

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/automoto/hitmarkers/config"
	"github.com/automoto/hitmarkers/damage"
	"github.com/automoto/hitmarkers/players"
	"github.com/automoto/hitmarkers/shared/messages"
	"github.com/automoto/hitmarkers/shared/netcomponents"
	"github.com/automoto/hitmarkers/shared/netconfig"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
)

const commandQueueSize = 1024

// clientConn is the part of a router client the server talks to.
type clientConn interface {
	Id() string
	SendMessage(msg any) error
}

// Options configures a Server. Zero values fall back to the package-level
// config.
type Options struct {
	Server config.ServerConfig
	Hits   config.HitsConfig
	Arena  config.ArenaConfig
	Prefs  players.Store
	Rand   *rand.Rand
}

// DefaultOptions returns options built from the loaded config.
func DefaultOptions() Options {
	return Options{
		Server: config.Server,
		Hits:   config.Hits,
		Arena:  config.Arena,
	}
}

// Server hosts players, feeds their damage reports into the hit number engine
// and replicates the resulting digit entities.
type Server struct {
	cfg       Options
	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport
	repl      replicator

	arena   *ServerArena
	players *playerSet
	clients map[clientConn]*Player
	prefs   *players.Manager
	effects *effectSpawner
	hits    *damage.Manager

	// Router callbacks run on network goroutines; everything that touches the
	// world goes through this queue and runs on the loop.
	commands chan func()
}

// NewServer creates a networked server. The arena is loaded from
// opts.Server.ArenaDir.
func NewServer(opts Options) (*Server, error) {
	arena, err := LoadServerArena(opts.Server.ArenaDir, opts.Server.Arena)
	if err != nil {
		return nil, err
	}
	if opts.Prefs == nil {
		store, err := players.OpenGdataStore(opts.Server.PrefsApp)
		if err != nil {
			return nil, fmt.Errorf("open preferences: %w", err)
		}
		opts.Prefs = store
	}

	world := donburi.NewWorld()
	s, err := newServer(opts, world, arena, newEsyncReplicator(world))
	if err != nil {
		return nil, err
	}
	s.setupRouterCallbacks()
	return s, nil
}

func newServer(opts Options, world donburi.World, arena *ServerArena, repl replicator) (*Server, error) {
	if opts.Prefs == nil {
		opts.Prefs = players.NewMemoryStore()
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	prefs, err := players.NewManager(opts.Hits.FreeAccess, opts.Prefs)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      opts,
		world:    world,
		repl:     repl,
		arena:    arena,
		players:  newPlayerSet(),
		clients:  make(map[clientConn]*Player),
		prefs:    prefs,
		commands: make(chan func(), commandQueueSize),
	}
	s.effects = newEffectSpawner(world, repl)
	s.hits = damage.NewManager(opts.Hits, opts.Server.TickRate, s.players, s.effects, opts.Rand)
	s.hits.Logf = log.Printf
	s.loop = NewGameLoop(s, opts.Server.TickRate)
	return s, nil
}

// Start runs the game loop and serves websocket clients on port. It blocks
// until the transport stops.
func (s *Server) Start(port uint) error {
	s.loop.Start()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop tears down every live hit number and stops the loop.
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("[server] client %s disconnected with error: %v", client.Id(), err)
		} else {
			log.Printf("[server] client %s disconnected", client.Id())
		}
		s.enqueue(func() { s.handleLeave(client) })
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.enqueue(func() { s.handleJoin(client, req) })
	})

	router.On(func(client *router.NetworkClient, input messages.PlayerInput) {
		s.enqueue(func() { s.handleInput(client, input) })
	})

	router.On(func(client *router.NetworkClient, report messages.DamageReport) {
		s.enqueue(func() { s.handleDamage(client, report) })
	})

	router.On(func(client *router.NetworkClient, _ messages.ToggleHits) {
		s.enqueue(func() { s.handleToggle(client) })
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) enqueue(cmd func()) {
	select {
	case s.commands <- cmd:
	default:
		log.Printf("[server] command queue full, dropping command")
	}
}

// ProcessCommands runs every queued command. Called at the start of each tick.
func (s *Server) ProcessCommands() {
	for {
		select {
		case cmd := <-s.commands:
			cmd()
		default:
			return
		}
	}
}

// Tick advances the server by one step. Due expiries fire before the queued
// commands run, so a burst hit arriving in an expiry tick opens a new window.
func (s *Server) Tick() {
	s.hits.Advance()
	s.ProcessCommands()

	if err := s.repl.Flush(); err != nil {
		log.Printf("[server] sync error: %v", err)
	}
}

func (s *Server) shutdown() {
	s.ProcessCommands()
	s.hits.Shutdown()
	if err := s.repl.Flush(); err != nil {
		log.Printf("[server] sync error: %v", err)
	}
}

func (s *Server) handleJoin(c clientConn, req messages.JoinRequest) {
	if _, joined := s.clients[c]; joined {
		s.send(c, messages.JoinRejected{Reason: "already joined"})
		return
	}
	if v := s.cfg.Server.Version; v != "" && req.Version != v {
		log.Printf("[server] rejecting %s: version %q, want %q", c.Id(), req.Version, v)
		s.send(c, messages.JoinRejected{Reason: fmt.Sprintf("version mismatch: server requires %s", v)})
		return
	}
	if limit := s.cfg.Server.MaxPlayers; limit > 0 && s.players.Len() >= limit {
		s.send(c, messages.JoinRejected{Reason: "server full"})
		return
	}

	spawn := s.arena.NextSpawn()
	body := newPlayerBody(s.arena, s.cfg.Arena, spawn.X, spawn.Y)

	entity := s.world.Create(netcomponents.NetPosition, netcomponents.NetPlayerState)
	entry := s.world.Entry(entity)
	netcomponents.NetPosition.Set(entry, &netcomponents.NetPositionData{})
	netcomponents.NetPlayerState.Set(entry, &netcomponents.NetPlayerStateData{
		Name: req.PlayerName,
		Bot:  req.Bot,
	})

	id, err := s.repl.TrackPlayer(s.world, &entity)
	if err != nil {
		log.Printf("[server] failed to set up player for %s: %v", c.Id(), err)
		s.arena.Space.Remove(body)
		if s.world.Valid(entity) {
			s.world.Remove(entity)
		}
		s.send(c, messages.JoinRejected{Reason: "internal error"})
		return
	}

	p := &Player{
		ID:     id,
		Name:   req.PlayerName,
		Bot:    req.Bot,
		Entity: entity,
		Body:   body,
	}
	p.syncEntity(s.world)
	s.players.Add(p)
	s.clients[c] = p

	// Slot ids can be reused after a disconnect.
	s.hits.OnPlayerConnected(id)
	if !p.Bot {
		s.prefs.OnPlayerConnected(id, p.Name)
	}

	log.Printf("[server] %q joined as %d (bot=%v)", p.Name, id, p.Bot)
	s.send(c, messages.JoinAccepted{
		NetworkID:   esync.NetworkId(id),
		ServerName:  s.cfg.Server.Name,
		TickRate:    s.cfg.Server.TickRate,
		Arena:       s.arena.Name,
		HitsEnabled: s.prefs.ShouldDisplay(id),
	})
}

func (s *Server) handleLeave(c clientConn) {
	p, ok := s.clients[c]
	if !ok {
		return
	}
	delete(s.clients, c)
	s.players.Remove(p.ID)

	s.hits.OnPlayerExit(p.ID)
	s.prefs.OnPlayerDisconnected(p.ID)

	s.arena.Space.Remove(p.Body)
	if s.world.Valid(p.Entity) {
		s.world.Remove(p.Entity)
	}
	log.Printf("[server] %q left (%d)", p.Name, p.ID)
}

func (s *Server) handleInput(c clientConn, input messages.PlayerInput) {
	p, ok := s.clients[c]
	if !ok {
		return
	}
	if p.applyInput(input, s.arena, s.cfg.Arena.MoveSpeed) {
		p.syncEntity(s.world)
	}
}

func (s *Server) handleDamage(c clientConn, report messages.DamageReport) {
	attacker, ok := s.clients[c]
	if !ok {
		return
	}
	victim := damage.PlayerID(report.VictimNetworkID)
	if !s.shouldDisplay(attacker, victim) {
		return
	}

	s.hits.OnDamage(damage.Event{
		Attacker: attacker.ID,
		Victim:   victim,
		Amount:   report.Amount,
		Critical: report.Hitgroup == netconfig.HitgroupHead,
		Weapon:   report.Weapon,
	})
}

// shouldDisplay filters hits that never produce numbers: self damage, bots
// shooting, unknown victims and attackers without access or with the display
// turned off.
func (s *Server) shouldDisplay(attacker *Player, victim damage.PlayerID) bool {
	if attacker.Bot || attacker.ID == victim {
		return false
	}
	if _, ok := s.players.Get(victim); !ok {
		return false
	}
	return s.prefs.ShouldDisplay(attacker.ID)
}

func (s *Server) handleToggle(c clientConn) {
	p, ok := s.clients[c]
	if !ok || p.Bot {
		return
	}
	enabled, allowed := s.prefs.Toggle(p.ID)
	if !allowed {
		log.Printf("[server] %q has no access to hit numbers", p.Name)
	}
	s.send(c, messages.HitsToggled{Enabled: enabled, Denied: !allowed})
}

func (s *Server) send(c clientConn, msg any) {
	if err := c.SendMessage(msg); err != nil {
		log.Printf("[server] failed to send %T to %s: %v", msg, c.Id(), err)
	}
}

// GrantAccess gives a connected player access to hit numbers.
func (s *Server) GrantAccess(id damage.PlayerID) {
	s.enqueue(func() { s.prefs.GiveAccess(id) })
}

// RevokeAccess takes hit number access away from a connected player.
func (s *Server) RevokeAccess(id damage.PlayerID) {
	s.enqueue(func() { s.prefs.TakeAccess(id) })
}

// World returns the ECS world
func (s *Server) World() donburi.World {
	return s.world
}

// PlayerCount returns the number of joined players. Only safe on the loop.
func (s *Server) PlayerCount() int {
	return s.players.Len()
}

// Hits exposes the damage number engine. Only safe on the loop.
func (s *Server) Hits() *damage.Manager {
	return s.hits
}
