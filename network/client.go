package network

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/automoto/hitmarkers/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("ClientState(%d)", int(s))
}

// Client manages a WebSocket connection to the hit number server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state       ClientState
	lastError   error
	networkID   esync.NetworkId
	serverName  string
	tickRate    int
	arena       string
	hitsEnabled bool
	conn        *websocket.Conn

	joinedCh   chan struct{}
	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins
	toggledCh  chan messages.HitsToggled
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		joinedCh:   make(chan struct{}, 1),
		snapshotCh: make(chan esync.WorldSnapshot, 1),
		toggledCh:  make(chan messages.HitsToggled, 4),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string, bot bool) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[probe] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.SendMessage(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
			Bot:        bot,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[probe] join accepted: networkID=%d server=%s tickRate=%d arena=%s hits=%v",
			msg.NetworkID, msg.ServerName, msg.TickRate, msg.Arena, msg.HitsEnabled)
		c.mu.Lock()
		c.networkID = msg.NetworkID
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.arena = msg.Arena
		c.hitsEnabled = msg.HitsEnabled
		c.state = StateJoinedGame
		c.mu.Unlock()

		select {
		case c.joinedCh <- struct{}{}:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[probe] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.On(func(_ *router.NetworkClient, msg messages.HitsToggled) {
		c.mu.Lock()
		if !msg.Denied {
			c.hitsEnabled = msg.Enabled
		}
		c.mu.Unlock()

		select {
		case c.toggledCh <- msg:
		default:
		}
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[probe] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[probe] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

// WaitJoined blocks until the join handshake completes or ctx is done.
func (c *Client) WaitJoined(ctx context.Context) error {
	select {
	case <-c.joinedCh:
		return nil
	case <-ctx.Done():
		if err := c.LastError(); err != nil {
			return err
		}
		return fmt.Errorf("waiting for join: %w", ctx.Err())
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) NetworkID() esync.NetworkId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkID
}

func (c *Client) Arena() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arena
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// HitsEnabled reports whether the server shows this client's hit numbers.
func (c *Client) HitsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hitsEnabled
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// SendVolley sends every report in order.
func (c *Client) SendVolley(reports []messages.DamageReport) error {
	for i, r := range reports {
		if err := c.SendMessage(r); err != nil {
			return fmt.Errorf("report %d: %w", i, err)
		}
	}
	return nil
}

// ToggleHits asks the server to flip this client's hit number display.
func (c *Client) ToggleHits() error {
	return c.SendMessage(messages.ToggleHits{})
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DrainToggles returns all pending HitsToggled replies, non-blocking.
func (c *Client) DrainToggles() []messages.HitsToggled {
	return drainChan(c.toggledCh)
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
