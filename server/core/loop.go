package core

import (
	"log"
	"sync"
	"time"
)

type GameLoop struct {
	server   *Server
	tickRate int

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches Run on its own goroutine. The loop counts as running from
// here on, so a Stop racing the goroutine waits for it instead of shutting
// down a second time. Starting a stopped loop does nothing.
func (g *GameLoop) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return
	}
	select {
	case <-g.stopChan:
		return
	default:
	}
	g.running = true
	go g.Run()
}

// Run blocks ticking the server until Stop. Use Start unless the caller
// already owns a goroutine for the loop.
func (g *GameLoop) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()
	defer close(g.done)

	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("[server] game loop started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.server.shutdown()
			log.Println("[server] game loop stopped")
			return
		case <-ticker.C:
			g.server.Tick()
		}
	}
}

// Stop asks the loop to shut down and waits for it. A loop that never ran
// shuts the server down on the caller's goroutine.
func (g *GameLoop) Stop() {
	g.mu.Lock()
	running := g.running
	select {
	case <-g.stopChan:
		g.mu.Unlock()
		return
	default:
		close(g.stopChan)
	}
	g.mu.Unlock()

	if running {
		<-g.done
		return
	}
	g.server.shutdown()
}
