package viahttp

import (
	"context"
	"net"
)

// Transport collaborator interfaces (spec §6/§9): the parser and
// connection core never touch net.Conn directly, so the same state
// machines drive a plain TCP socket, a TLS socket, or a test double.
// Grounded on spec §9's design note "generalize the template-over-socket-
// type design into a single transport abstraction" — this package picks
// one seam (ByteSource/ByteSink) rather than the original's compile-time
// socket type parameter, matching Go's accept-interfaces idiom instead of
// generics-for-polymorphism.

// ByteSource is anything a connection can read bytes from.
type ByteSource interface {
	Read(p []byte) (n int, err error)
}

// ByteSink is anything a connection can write bytes to.
type ByteSink interface {
	Write(p []byte) (n int, err error)
}

// Transport is a bidirectional byte stream with a close and a remote
// address, the minimal surface Connection needs from a socket.
type Transport interface {
	ByteSource
	ByteSink
	Close() error
	RemoteAddr() net.Addr
}

// netTransport adapts a net.Conn (TCP or TLS, both satisfy net.Conn) to
// Transport.
type netTransport struct {
	net.Conn
}

// NewNetTransport wraps conn (as returned by net.Dial, net.Listener.Accept,
// or tls.Server/tls.Client) as a Transport.
func NewNetTransport(conn net.Conn) Transport {
	return &netTransport{Conn: conn}
}

// Listener accepts incoming transports. net.Listener already satisfies the
// Accept/Close/Addr shape this needs once its Accept result is wrapped.
type Listener struct {
	net.Listener
}

// NewListener wraps an already-bound net.Listener (plain or tls.NewListener)
// for use by Server.Serve.
func NewListener(l net.Listener) *Listener {
	return &Listener{Listener: l}
}

// Accept blocks for the next inbound connection and returns it as a
// Transport.
func (l *Listener) Accept() (Transport, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewNetTransport(conn), nil
}

// Dialer opens outbound transports, honoring ctx cancellation.
type Dialer struct {
	net.Dialer
}

// DialContext connects to addr over network and returns the connection as
// a Transport.
func (d *Dialer) DialContext(ctx context.Context, network, addr string) (Transport, error) {
	conn, err := d.Dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	return NewNetTransport(conn), nil
}
