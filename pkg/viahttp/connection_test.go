package viahttp

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionReceiveInvokesOnRequestAndFlushesResponse(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	cfg := DefaultServerConfig()
	var gotMethod string
	conn := NewConnection(NewNetTransport(server), &cfg, ServerConnectionCallbacks{
		OnRequest: func(c *Connection, rr *RequestReceiver) {
			gotMethod = string(rr.Method())
			tx := NewTxResponse(200, "OK")
			msg, err := tx.Message(0)
			require.NoError(t, err)
			c.Send([]byte(msg))
		},
	}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.Receive([]byte("GET / HTTP/1.1\r\nHost: example.com\r\nConnection: close\r\n\r\n"))
		_ = conn.Flush()
	}()

	buf := make([]byte, 256)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "GET", gotMethod)
	assert.Contains(t, string(buf[:n]), "HTTP/1.1 200 OK")
	<-done
}

func TestConnectionInvalidRequestReportsStatus(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfg := DefaultServerConfig()
	var gotStatus int
	conn := NewConnection(NewNetTransport(server), &cfg, ServerConnectionCallbacks{
		OnInvalid: func(c *Connection, err error, status int) {
			gotStatus = status
		},
	}, nil)

	conn.Receive([]byte("GET / HTTP/1.1\r\n\r\n")) // missing Host
	assert.Equal(t, 400, gotStatus)
}

func TestConnectionInvalidRequestSendsCannedResponseWhenUnhandled(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfg := DefaultServerConfig()
	conn := NewConnection(NewNetTransport(server), &cfg, ServerConnectionCallbacks{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.Receive([]byte("GET / HTTP/1.1\r\n\r\n")) // missing Host
		_ = conn.Flush()
	}()

	buf := make([]byte, 256)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "HTTP/1.1 400 Bad Request")
	<-done
}

func TestConnectionCloseIsIdempotent(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	cfg := DefaultServerConfig()
	conn := NewConnection(NewNetTransport(server), &cfg, ServerConnectionCallbacks{}, nil)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.Equal(t, StateClosed, conn.State())
	assert.False(t, conn.Connected())

	_, err := client.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
