package viahttp

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/watt-toolkit/viahttp/internal/connindex"
)

// Authenticator hooks a pluggable per-request authentication check into the
// server's request path, mirroring the collaborator-not-built-in
// authentication surface of spec §6/§9.
type Authenticator interface {
	Authenticate(rr *RequestReceiver) (ok bool, status int)
}

// Server accepts connections on a Listener and drives each through a
// Connection's receive loop, invoking the registered callbacks. Grounded
// on the teacher's accept-loop shape (shockwave/http11 package wiring a
// net.Listener to per-connection goroutines), generalized for
// Concurrency-bounded worker-pool fan-out per spec §6's thread-pool mode.
type Server struct {
	Config    ServerConfig
	Callbacks ServerConnectionCallbacks
	Auth      Authenticator
	Log       *zap.Logger

	connections *connindex.Index
}

// NewServer returns a Server using cfg, invoking callbacks for connection
// events. log may be nil, in which case zap.NewNop() is used.
func NewServer(cfg ServerConfig, callbacks ServerConnectionCallbacks, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if callbacks.OnChunk != nil {
		cfg.ConcatenateChunks = false
	}
	return &Server{
		Config:      cfg,
		Callbacks:   callbacks,
		Log:         log,
		connections: connindex.New(0),
	}
}

// Serve accepts connections from l until ctx is cancelled, dispatching each
// to its own goroutine while at most Config.Concurrency connections are
// served at once (spec §5's optional thread-pool mode; 0 or 1 serves one
// connection at a time, the accept loop waiting for it to finish before
// serving the next). An Accept error does not stop the loop: each one is
// collected, and the collected errors are returned once ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l *Listener) error {
	sem := make(chan struct{}, s.concurrency())
	var wg sync.WaitGroup
	var errs *multierror.Error
	var mu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			mu.Lock()
			result := errs.ErrorOrNil()
			mu.Unlock()
			return result
		default:
		}

		transport, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				wg.Wait()
				return errs.ErrorOrNil()
			default:
			}
			mu.Lock()
			errs = multierror.Append(errs, errors.Wrap(err, "accept"))
			mu.Unlock()
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			s.serveOne(ctx, transport)
		}()
	}
}

func (s *Server) concurrency() int {
	if s.Config.Concurrency < 1 {
		return 1
	}
	return s.Config.Concurrency
}

func (s *Server) serveOne(ctx context.Context, transport Transport) {
	callbacks := s.Callbacks
	if s.Auth != nil {
		inner := callbacks.OnRequest
		callbacks.OnRequest = func(c *Connection, rr *RequestReceiver) {
			if ok, status := s.Auth.Authenticate(rr); !ok {
				tx := NewTxResponse(status, "Unauthorized")
				if msg, err := tx.Message(0); err == nil {
					c.Send([]byte(msg))
				}
				return
			}
			if inner != nil {
				inner(c, rr)
			}
		}
	}

	conn := NewConnection(transport, &s.Config, callbacks, s.Log)
	s.connections.Store(conn.ID.String(), conn)
	defer s.connections.Delete(conn.ID.String())

	if s.Callbacks.OnSocketConnected != nil {
		s.Callbacks.OnSocketConnected(conn)
	}

	bb := GetBuffer()
	defer PutBuffer(bb)
	size := s.receiveBufferSize()
	if cap(bb.B) < size {
		bb.B = make([]byte, size)
	} else {
		bb.B = bb.B[:size]
	}
	buf := bb.B
	for conn.Connected() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return
		default:
		}

		if d, ok := transport.(interface{ SetReadDeadline(time.Time) error }); ok && s.Config.IdleTimeout > 0 {
			_ = d.SetReadDeadline(time.Now().Add(s.Config.IdleTimeout))
		}
		n, err := transport.Read(buf)
		if n > 0 {
			conn.Receive(buf[:n])
			if ferr := conn.Flush(); ferr != nil {
				_ = conn.Close()
				return
			}
		}
		if err != nil {
			_ = conn.Close()
			return
		}
	}
}

func (s *Server) receiveBufferSize() int {
	if s.Config.ReceiveBufferSize < 1 {
		return 8192
	}
	return s.Config.ReceiveBufferSize
}

// Connections returns the number of currently tracked live connections.
func (s *Server) Connections() int {
	return s.connections.Len()
}

// Shutdown closes every tracked connection.
func (s *Server) Shutdown() error {
	var errs *multierror.Error
	s.connections.Range(func(_, v any) bool {
		conn := v.(*Connection)
		if err := conn.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
		return true
	})
	return errs.ErrorOrNil()
}
