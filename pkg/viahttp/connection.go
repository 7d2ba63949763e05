package viahttp

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnState is a connection's lifecycle state (spec §4.11).
type ConnState int32

const (
	StateHandshaking ConnState = iota
	StateReading
	StateWriting
	StateShuttingDown
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateReading:
		return "reading"
	case StateWriting:
		return "writing"
	case StateShuttingDown:
		return "shutting_down"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ServerConnectionCallbacks is the host callback surface a Connection
// invokes as outcomes are produced (spec §6's on_request/on_chunk/
// on_expect_continue/on_invalid/on_socket_connected/on_socket_disconnected/
// on_message_sent).
type ServerConnectionCallbacks struct {
	OnRequest           func(c *Connection, rr *RequestReceiver)
	OnChunk             func(c *Connection, rr *RequestReceiver)
	OnExpectContinue    func(c *Connection, rr *RequestReceiver) (sendContinue bool)
	OnInvalid           func(c *Connection, err error, status int)
	OnSocketConnected    func(c *Connection)
	OnSocketDisconnected func(c *Connection)
	OnMessageSent        func(c *Connection)
}

// Connection is a single server-side connection's I/O state machine (spec
// §4.11): a receive buffer pushed into by the transport loop, a transmit
// queue flushed as the socket allows, and connected/disconnectPending/
// shutdownSent flags gating the Handshaking→Reading↔Writing→ShuttingDown→
// Closed progression. Grounded on the teacher's atomic-state Connection
// (shockwave/http11/connection.go), adapted from its blocking
// io.Reader-driven Serve loop to a push model: Receive is called by
// whatever owns the socket read loop (Server.Serve here, but a test can
// call it directly with no real socket at all).
type Connection struct {
	ID        uuid.UUID
	transport Transport
	cfg       *ServerConfig
	callbacks ServerConnectionCallbacks
	log       *zap.Logger

	state int32 // ConnState, accessed atomically

	rx *RequestReceiver

	mu                sync.Mutex
	txQueue           [][]byte
	connected         bool
	disconnectPending bool
	shutdownSent      bool

	lastActivity atomic.Int64 // unix nanos
}

// NewConnection wraps transport as a server-side Connection using cfg and
// callbacks.
func NewConnection(transport Transport, cfg *ServerConfig, callbacks ServerConnectionCallbacks, log *zap.Logger) *Connection {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Connection{
		ID:        uuid.New(),
		transport: transport,
		cfg:       cfg,
		callbacks: callbacks,
		log:       log,
		rx:        NewRequestReceiver(cfg),
		connected: true,
	}
	atomic.StoreInt32(&c.state, int32(StateHandshaking))
	c.touch()
	return c
}

func (c *Connection) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// IdleFor reports how long the connection has gone without activity.
func (c *Connection) IdleFor() time.Duration {
	return time.Since(time.Unix(0, c.lastActivity.Load()))
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() ConnState {
	return ConnState(atomic.LoadInt32(&c.state))
}

func (c *Connection) setState(s ConnState) {
	atomic.StoreInt32(&c.state, int32(s))
}

// Connected reports whether the connection is still open.
func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Receive pushes newly-read bytes into the connection's request receiver,
// driving it through as many outcomes as the buffer yields and invoking
// the matching callback for each, until an Incomplete, Invalid, or
// end-of-buffer result is reached.
func (c *Connection) Receive(p []byte) {
	if !c.Connected() {
		return
	}
	c.touch()
	c.setState(StateReading)

	buf := p
	for len(buf) > 0 {
		n, outcome, err := c.rx.Receive(buf)
		buf = buf[n:]

		switch outcome {
		case Incomplete:
			return

		case ExpectContinue:
			send := true
			if c.callbacks.OnExpectContinue != nil {
				send = c.callbacks.OnExpectContinue(c, c.rx)
			}
			if send {
				c.Send([]byte("HTTP/1.1 100 Continue\r\n\r\n"))
			}

		case Chunk:
			if c.callbacks.OnChunk != nil {
				c.callbacks.OnChunk(c, c.rx)
			}

		case Valid:
			if c.callbacks.OnRequest != nil {
				c.callbacks.OnRequest(c, c.rx)
			}
			close := c.rx.Headers().CloseConnection() || c.rx.MajorVersion() == '1' && c.rx.MinorVersion() == '0'
			c.rx.Reset()
			if close {
				c.RequestClose()
				return
			}

		case Invalid:
			status, _ := StatusForError(err)
			c.log.Warn("invalid request", zap.String("connection_id", c.ID.String()), zap.Error(err), zap.Int("status", status))
			if c.callbacks.OnInvalid != nil {
				c.callbacks.OnInvalid(c, err, status)
			} else {
				c.sendCannedResponse(status)
			}
			if c.cfg.AutoDisconnectOnInvalid {
				c.RequestClose()
			}
			c.rx.Reset()
			return
		}
	}
}

// sendCannedResponse enqueues the server's default status-only response for
// an Invalid outcome when the host has not registered OnInvalid (spec §7:
// "a server, by default, emits a canned response carrying the chosen
// status").
func (c *Connection) sendCannedResponse(status int) {
	reason := http.StatusText(status)
	if reason == "" {
		reason = "Error"
	}
	tx := NewTxResponse(status, reason)
	msg, err := tx.Message(0)
	if err != nil {
		return
	}
	c.Send([]byte(msg))
}

// Send enqueues p for transmission, to be flushed by Flush (spec §4.11's
// "transmit queue flushed as the socket allows").
func (c *Connection) Send(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	c.txQueue = append(c.txQueue, cp)
}

// Flush writes all queued transmissions to the transport in order.
func (c *Connection) Flush() error {
	c.mu.Lock()
	queue := c.txQueue
	c.txQueue = nil
	c.mu.Unlock()

	if len(queue) == 0 {
		return nil
	}
	c.setState(StateWriting)
	for _, chunk := range queue {
		if _, err := c.transport.Write(chunk); err != nil {
			return err
		}
	}
	c.touch()
	if c.callbacks.OnMessageSent != nil {
		c.callbacks.OnMessageSent(c)
	}

	c.mu.Lock()
	pending := c.disconnectPending
	c.mu.Unlock()
	if pending {
		return c.closeNow()
	}
	c.setState(StateReading)
	return nil
}

// RequestClose marks the connection to be closed once its transmit queue
// has drained (spec §4.11's disconnectPending/shutdownSent flags).
func (c *Connection) RequestClose() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.disconnectPending = true
	drained := len(c.txQueue) == 0
	c.mu.Unlock()

	if drained {
		_ = c.closeNow()
	}
}

func (c *Connection) closeNow() error {
	c.mu.Lock()
	if c.shutdownSent {
		c.mu.Unlock()
		return nil
	}
	c.shutdownSent = true
	c.connected = false
	c.mu.Unlock()

	c.setState(StateShuttingDown)
	err := c.transport.Close()
	c.setState(StateClosed)
	c.log.Debug("connection closed", zap.String("connection_id", c.ID.String()))
	if c.callbacks.OnSocketDisconnected != nil {
		c.callbacks.OnSocketDisconnected(c)
	}
	return err
}

// Close closes the connection immediately, discarding any queued
// transmissions.
func (c *Connection) Close() error {
	return c.closeNow()
}
