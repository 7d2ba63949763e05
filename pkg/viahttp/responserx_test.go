package viahttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseReceiverContentLengthBody(t *testing.T) {
	cfg := DefaultClientConfig()
	rr := NewResponseReceiver(&cfg)

	data := []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")
	n, outcome, err := rr.Receive(data, false)
	require.NoError(t, err)
	assert.Equal(t, Valid, outcome)
	assert.Equal(t, len(data), n)
	assert.Equal(t, "hello", string(rr.Body()))
}

func TestResponseReceiverNoBodyStatus(t *testing.T) {
	cfg := DefaultClientConfig()
	rr := NewResponseReceiver(&cfg)

	data := []byte("HTTP/1.1 204 No Content\r\n\r\n")
	_, outcome, err := rr.Receive(data, false)
	require.NoError(t, err)
	assert.Equal(t, Valid, outcome)
	assert.Empty(t, rr.Body())
}

func TestResponseReceiverHeadRequestNoBody(t *testing.T) {
	cfg := DefaultClientConfig()
	rr := NewResponseReceiver(&cfg)
	rr.NoBodyExpected = true

	data := []byte("HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n")
	_, outcome, err := rr.Receive(data, false)
	require.NoError(t, err)
	assert.Equal(t, Valid, outcome)
	assert.Empty(t, rr.Body())
}

func TestResponseReceiverReadUntilCloseRequiresBodyByte(t *testing.T) {
	cfg := DefaultClientConfig()
	rr := NewResponseReceiver(&cfg)

	data := []byte("HTTP/1.1 200 OK\r\n\r\n")
	_, outcome, err := rr.Receive(data, false)
	require.NoError(t, err)
	assert.Equal(t, Incomplete, outcome)

	// Per spec §9 Open Question (2): closing before any body byte has
	// arrived is still reported as Incomplete, not a zero-length Valid.
	_, outcome, err = rr.Receive(nil, true)
	require.NoError(t, err)
	assert.Equal(t, Incomplete, outcome)
	assert.Empty(t, rr.Body())
}

func TestResponseReceiverReadUntilCloseWithBody(t *testing.T) {
	cfg := DefaultClientConfig()
	rr := NewResponseReceiver(&cfg)

	data := []byte("HTTP/1.1 200 OK\r\n\r\nhello world")
	_, outcome, err := rr.Receive(data, false)
	require.NoError(t, err)
	assert.Equal(t, Incomplete, outcome)
	assert.Equal(t, "hello world", string(rr.Body()))

	_, outcome, err = rr.Receive(nil, true)
	require.NoError(t, err)
	assert.Equal(t, Valid, outcome)
	assert.Equal(t, "hello world", string(rr.Body()))
}

func TestResponseReceiverChunkedConcatenated(t *testing.T) {
	cfg := DefaultClientConfig()
	rr := NewResponseReceiver(&cfg)

	data := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n")
	_, outcome, err := rr.Receive(data, false)
	require.NoError(t, err)
	assert.Equal(t, Valid, outcome)
	assert.Equal(t, "hello", string(rr.Body()))
}

func TestResponseReceiverChunkedUnconcatenated(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.ConcatenateChunks = false
	rr := NewResponseReceiver(&cfg)

	data := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n")

	n, outcome, err := rr.Receive(data, false)
	require.NoError(t, err)
	assert.Equal(t, Chunk, outcome)
	assert.Equal(t, "hello", string(rr.Body()))

	n2, outcome, err := rr.Receive(data[n:], false)
	require.NoError(t, err)
	assert.Equal(t, Chunk, outcome)
	assert.Equal(t, " world", string(rr.Body()))

	_, outcome, err = rr.Receive(data[n+n2:], false)
	require.NoError(t, err)
	assert.Equal(t, Chunk, outcome)
	assert.True(t, rr.IsLastChunk())
	assert.Empty(t, rr.Body())
	assert.Empty(t, rr.Trailer().ToString())
}
