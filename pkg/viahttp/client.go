package viahttp

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ClientConnectionCallbacks is the host callback surface a Client and its
// ClientConnections invoke (spec §6's on_response/on_chunk/
// on_invalid_response/on_connected/on_disconnected/on_message_sent).
type ClientConnectionCallbacks struct {
	OnResponse        func(cc *ClientConnection, rr *ResponseReceiver)
	OnChunk           func(cc *ClientConnection, rr *ResponseReceiver)
	OnInvalidResponse func(cc *ClientConnection, err error)
	OnConnected       func(cc *ClientConnection)
	OnDisconnected    func(cc *ClientConnection)
	OnMessageSent     func(cc *ClientConnection)
}

// Client dials outbound connections and drives each through a
// ClientConnection's receive loop. Grounded in shape on Server (server.go);
// client and server share the push-model Connection design but parse in
// opposite directions, per spec §4.9's separate response receiver.
type Client struct {
	Config    ClientConfig
	Callbacks ClientConnectionCallbacks
	Log       *zap.Logger
	Dialer    Dialer
}

// NewClient returns a Client using cfg.
func NewClient(cfg ClientConfig, callbacks ClientConnectionCallbacks, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{Config: cfg, Callbacks: callbacks, Log: log}
}

// Connect dials network/addr and returns an open ClientConnection.
func (cl *Client) Connect(ctx context.Context, network, addr string) (*ClientConnection, error) {
	transport, err := cl.Dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("dialing %s %s", network, addr))
	}
	cc := &ClientConnection{
		client:    cl,
		transport: transport,
		rx:        NewResponseReceiver(&cl.Config),
		connected: true,
	}
	if cl.Callbacks.OnConnected != nil {
		cl.Callbacks.OnConnected(cc)
	}
	return cc, nil
}

// ClientConnection is a single outbound connection's I/O state machine,
// the client-side counterpart to Connection.
type ClientConnection struct {
	client    *Client
	transport Transport
	rx        *ResponseReceiver
	connected bool
}

// Response returns the receiver holding the most recently parsed response.
func (cc *ClientConnection) Response() *ResponseReceiver {
	return cc.rx
}

// SendRequest writes a fully-rendered request message (see TxRequest) to
// the connection.
func (cc *ClientConnection) SendRequest(message string) error {
	_, err := cc.transport.Write([]byte(message))
	if err == nil && cc.client.Callbacks.OnMessageSent != nil {
		cc.client.Callbacks.OnMessageSent(cc)
	}
	return err
}

// ReadResponse blocks, reading from the transport in Config.ReceiveBufferSize
// chunks, until a Valid or Invalid outcome is produced. Each Chunk outcome
// is passed to OnChunk and reading continues with any bytes left over from
// the same read. noBody must be set for requests (HEAD, or as dictated by
// the prior status) that preclude a response body.
func (cc *ClientConnection) ReadResponse(noBody bool) (RxOutcome, error) {
	cc.rx.NoBodyExpected = noBody
	bb := GetBuffer()
	defer PutBuffer(bb)
	size := cc.receiveBufferSize()
	if cap(bb.B) < size {
		bb.B = make([]byte, size)
	} else {
		bb.B = bb.B[:size]
	}
	buf := bb.B

	leftover := 0
	for {
		n := leftover
		var err error
		if leftover == 0 {
			n, err = cc.transport.Read(buf)
		}
		leftover = 0
		closed := err != nil
		var consumed int
		var outcome RxOutcome
		var perr error
		if n > 0 || closed {
			consumed, outcome, perr = cc.rx.Receive(buf[:n], closed)
		} else {
			continue
		}

		switch outcome {
		case Incomplete:
			if closed {
				return Invalid, err
			}
			continue
		case Chunk:
			if cc.client.Callbacks.OnChunk != nil {
				cc.client.Callbacks.OnChunk(cc, cc.rx)
			}
			leftover = copy(buf, buf[consumed:n])
			continue
		case Valid:
			if cc.client.Callbacks.OnResponse != nil {
				cc.client.Callbacks.OnResponse(cc, cc.rx)
			}
			return Valid, nil
		case Invalid:
			if cc.client.Callbacks.OnInvalidResponse != nil {
				cc.client.Callbacks.OnInvalidResponse(cc, perr)
			}
			return Invalid, perr
		}
	}
}

func (cc *ClientConnection) receiveBufferSize() int {
	if cc.client.Config.ReceiveBufferSize < 1 {
		return 8192
	}
	return cc.client.Config.ReceiveBufferSize
}

// Reset prepares cc to read the next response on the same (persistent)
// connection.
func (cc *ClientConnection) Reset() {
	cc.rx.Reset()
}

// Close closes the underlying transport.
func (cc *ClientConnection) Close() error {
	if !cc.connected {
		return nil
	}
	cc.connected = false
	err := cc.transport.Close()
	if cc.client.Callbacks.OnDisconnected != nil {
		cc.client.Callbacks.OnDisconnected(cc)
	}
	return err
}
