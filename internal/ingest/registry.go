// Package ingest implements the three protocol front-ends (LineText over
// TCP, LineDatagram over UDP, Batched framed binary over TCP) described in
// spec.md §4.1, the client registry and pause/resume flow control of §4.2,
// and the shared post-parse path that feeds parsed datapoints into the
// cache. The TCP accept-loop/per-connection-goroutine shape and the UDP
// read-loop spawning per-packet goroutines are grounded on the graphite
// listener reference implementation; the sync.WaitGroup+done-channel
// shutdown idiom is the same file's Server.Close().
package ingest

import (
	"net"
	"sync"

	carbondlog "github.com/carbond/carbond/internal/log"
)

// pausableClient is the flow-control handle spec.md §4.2 calls "transport":
// pauseProducing stops reads from the kernel; resumeProducing reverses it.
type pausableClient struct {
	conn net.Conn
	mu   sync.Mutex
	cond *sync.Cond
	// paused gates the listener's read loop: while it is set, waitWhilePaused
	// (called before each read) blocks until resumeProducing or close.
	paused bool
	closed bool
}

func newPausableClient(conn net.Conn, startPaused bool) *pausableClient {
	c := &pausableClient{conn: conn, paused: startPaused}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *pausableClient) pauseProducing() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *pausableClient) resumeProducing() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *pausableClient) waitWhilePaused() (closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.paused && !c.closed {
		c.cond.Wait()
	}
	return c.closed
}

func (c *pausableClient) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cond.Broadcast()
	c.conn.Close()
}

// ClientManager tracks every currently-connected streaming client (LineText
// and Batched; LineDatagram has no per-client state since UDP carries no
// backpressure channel) and exposes the pauseAll/resumeAll operations of
// spec.md §4.2. New connections start paused iff the registry's effective
// state is paused at accept time.
type ClientManager struct {
	mu      sync.Mutex
	clients map[*pausableClient]struct{}
	paused  bool
}

// NewClientManager returns an empty, unpaused registry.
func NewClientManager() *ClientManager {
	return &ClientManager{clients: make(map[*pausableClient]struct{})}
}

func (m *ClientManager) register(conn net.Conn) *pausableClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := newPausableClient(conn, m.paused)
	m.clients[c] = struct{}{}
	return c
}

func (m *ClientManager) unregister(c *pausableClient) {
	m.mu.Lock()
	delete(m.clients, c)
	m.mu.Unlock()
}

// PauseAll instructs every tracked client's transport to stop reading.
// Idempotent.
func (m *ClientManager) PauseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused {
		return
	}
	m.paused = true
	for c := range m.clients {
		c.pauseProducing()
	}
	carbondlog.ComponentDebug("ingest", "clients paused")
}

// ResumeAll reverses PauseAll. Idempotent.
func (m *ClientManager) ResumeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.paused {
		return
	}
	m.paused = false
	for c := range m.clients {
		c.resumeProducing()
	}
	carbondlog.ComponentDebug("ingest", "clients resumed")
}

// Paused reports the registry's effective pause state.
func (m *ClientManager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}
