// Package client implements the browser-facing side of the Strudel MCP
// wire protocol: one session-identified WebSocket held open against the
// peer, with automatic fixed-delay reconnection, type-tag dispatch of
// inbound messages, and request/response correlation for code queries.
package client

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/calvinw/strudel-llm-mirror/internal/editor"
	"github.com/calvinw/strudel-llm-mirror/internal/protocol"
	"github.com/calvinw/strudel-llm-mirror/internal/session"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	sendBufSize   = 256
)

// ErrNotConnected is returned when a message is handed to a manager whose
// channel is not open. The message is dropped; there is no queue.
var ErrNotConnected = errors.New("not connected")

// ErrAlreadyStarted is returned by Start on a manager that already ran.
var ErrAlreadyStarted = errors.New("manager already started")

// Manager owns the lifecycle of the channel to the peer: it dials,
// observes closure, and re-dials after a fixed delay until Stop. At most
// one channel exists per session at any instant.
type Manager struct {
	cfg      Config
	sess     *session.Session
	endpoint string

	mu        sync.Mutex
	adapter   editor.Adapter
	conn      *websocket.Conn
	send      chan []byte
	reconnect *time.Timer
	started   bool
	stopped   bool
	active    bool

	subMu sync.RWMutex
	subs  map[string]chan session.Status

	wg sync.WaitGroup
}

// New creates a manager for one session. The adapter may be nil and may
// be attached later; every handler treats its absence as a degraded,
// non-fatal state.
func New(cfg Config, sess *session.Session, adapter editor.Adapter) *Manager {
	return &Manager{
		cfg:     cfg,
		sess:    sess,
		adapter: adapter,
		subs:    make(map[string]chan session.Status),
	}
}

// Start evaluates the activation gate once and, if it passes, begins
// dialing in the background. On a gated-off host the manager is inert:
// Start succeeds, no channel is ever opened.
func (m *Manager) Start() error {
	endpoint, err := m.cfg.wsEndpoint(m.sess.ID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.endpoint = endpoint
	m.mu.Unlock()

	if !m.cfg.Enabled {
		log.Printf("mirror: disabled by configuration")
		return nil
	}
	gate := m.cfg.Gate
	if gate == nil {
		gate = DefaultGate
	}
	if host := hostOf(endpoint); !gate(host) {
		log.Printf("mirror: inactive for host %s", host)
		return nil
	}

	m.mu.Lock()
	m.active = true
	m.mu.Unlock()

	go m.dial()
	return nil
}

// Stop tears the session's channel down: it closes the connection,
// cancels any pending reconnect timer so a dead session cannot resurrect
// a channel, and waits for the pumps to exit. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
	conn := m.conn
	m.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeDeadline))
		conn.Close()
	}
	m.wg.Wait()

	m.setStatus(session.StatusDisconnected)

	m.subMu.Lock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.subMu.Unlock()
}

// Active reports whether the activation gate passed at Start.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Status returns the session's current connection status.
func (m *Manager) Status() session.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Status
}

// SessionID returns the immutable session identifier.
func (m *Manager) SessionID() string {
	return m.sess.ID
}

// ServerURL returns the configured peer base URL.
func (m *Manager) ServerURL() string {
	return m.cfg.ServerURL
}

// Adapter returns the currently attached editor adapter, which may be nil.
func (m *Manager) Adapter() editor.Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adapter
}

// SetAdapter attaches or replaces the editor adapter.
func (m *Manager) SetAdapter(a editor.Adapter) {
	m.mu.Lock()
	m.adapter = a
	m.mu.Unlock()
}

// SubscribeStatus registers a status listener. The returned channel
// receives each status transition and is closed at Stop; slow listeners
// miss intermediate transitions rather than blocking the manager.
func (m *Manager) SubscribeStatus() (string, <-chan session.Status) {
	id := uuid.New().String()
	ch := make(chan session.Status, 8)

	m.subMu.Lock()
	m.subs[id] = ch
	m.subMu.Unlock()
	return id, ch
}

// Unsubscribe removes a status listener and closes its channel.
func (m *Manager) Unsubscribe(id string) {
	m.subMu.Lock()
	if ch, ok := m.subs[id]; ok {
		close(ch)
		delete(m.subs, id)
	}
	m.subMu.Unlock()
}

// dial opens a channel if none exists. Dial attempts are serialized:
// they originate either from Start (once) or from the single reconnect
// timer slot.
func (m *Manager) dial() {
	m.mu.Lock()
	if m.stopped || m.conn != nil {
		m.mu.Unlock()
		return
	}
	endpoint := m.endpoint
	m.mu.Unlock()

	m.setStatus(session.StatusConnecting)

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		log.Printf("mirror: dial %s: %v", endpoint, err)
		m.setStatus(session.StatusDisconnected)
		m.scheduleReconnect()
		return
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		conn.Close()
		m.setStatus(session.StatusDisconnected)
		return
	}
	m.conn = conn
	m.send = make(chan []byte, sendBufSize)
	send := m.send
	m.mu.Unlock()

	m.setStatus(session.StatusConnected)
	log.Printf("mirror: connected, session %s", m.sess.ID)

	m.wg.Add(2)
	go m.writePump(conn, send)
	go m.readPump(conn)
}

// readPump reads frames until the connection dies, dispatching each one
// synchronously so per-connection message order is preserved.
func (m *Manager) readPump(conn *websocket.Conn) {
	transportErr := false
	defer func() {
		m.connLost(conn, transportErr)
		m.wg.Done()
	}()

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Anything but a graceful close handshake is a transport
			// error: abnormal close codes, dropped TCP connections,
			// truncated frames. Teardown-induced errors are filtered
			// out downstream by the stopped flag.
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("mirror: read error: %v", err)
				transportErr = true
			}
			return
		}
		m.handleMessage(raw)
	}
}

// writePump drains the send channel and keeps the transport alive with
// control pings.
func (m *Manager) writePump(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
		m.wg.Done()
	}()

	for {
		select {
		case data, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// connLost releases a dead connection and, unless the session is being
// torn down, schedules the fixed-delay reconnect.
func (m *Manager) connLost(conn *websocket.Conn, transportErr bool) {
	m.mu.Lock()
	if m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	close(m.send)
	m.send = nil
	stopped := m.stopped
	m.mu.Unlock()

	conn.Close()
	if stopped {
		return
	}

	if transportErr {
		m.setStatus(session.StatusError)
	}
	m.setStatus(session.StatusDisconnected)
	m.scheduleReconnect()
}

// scheduleReconnect arms the single reconnect timer slot. Every closure
// is retried indefinitely after the same fixed delay.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.reconnect != nil {
		return
	}
	m.reconnect = time.AfterFunc(m.cfg.reconnectDelay(), func() {
		m.mu.Lock()
		m.reconnect = nil
		stopped := m.stopped
		m.mu.Unlock()
		if stopped {
			return
		}
		m.dial()
	})
}

// Send marshals a message and hands it to the write pump. A message sent
// while the channel is closed is dropped, never queued.
func (m *Manager) Send(msg *protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Held across the channel send so connLost cannot close the channel
	// underneath us; the send is non-blocking, so the lock is brief.
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.send == nil {
		log.Printf("mirror: drop %s: %v", msg.Type, ErrNotConnected)
		return ErrNotConnected
	}
	select {
	case m.send <- data:
		return nil
	default:
		log.Printf("mirror: drop %s: send buffer full", msg.Type)
		return ErrNotConnected
	}
}

func (m *Manager) setStatus(st session.Status) {
	m.mu.Lock()
	if m.sess.Status == st {
		m.mu.Unlock()
		return
	}
	m.sess.Status = st
	m.mu.Unlock()

	m.subMu.RLock()
	for _, ch := range m.subs {
		select {
		case ch <- st:
		default:
		}
	}
	m.subMu.RUnlock()
}
