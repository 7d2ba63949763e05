package viahttp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRequestMessage(t *testing.T) {
	tx := NewTxRequest("GET", "/index.html")
	tx.AddHeader(HeaderHost, "example.com")

	msg, err := tx.Message(0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "GET /index.html HTTP/1.1\r\n"))
	assert.Contains(t, msg, "Host: example.com\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n"))
}

func TestTxResponseMessageIncludesDateAndServer(t *testing.T) {
	tx := NewTxResponse(200, "OK")
	tx.AddHeader(HeaderContentType, "text/plain")

	msg, err := tx.Message(5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, msg, "Content-Length: 5\r\n")
	assert.Contains(t, msg, "Date: ")
	assert.Contains(t, msg, "Server: "+ServerIdentifier)
}

func TestTxResponseOmitsContentLengthFor204And304(t *testing.T) {
	for _, status := range []int{204, 304} {
		tx := NewTxResponse(status, "No Content")
		msg, err := tx.Message(5)
		require.NoError(t, err)
		assert.NotContains(t, msg, "Content-Length")
	}
}

func TestTxResponseDoesNotDuplicateExistingContentLength(t *testing.T) {
	tx := NewTxResponse(200, "OK")
	tx.AddHeader(HeaderContentLength, "9")

	msg, err := tx.Message(5)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(msg, "Content-Length:"))
	assert.Contains(t, msg, "Content-Length: 9\r\n")
}

func TestTxResponseOmitsContentLengthWhenChunked(t *testing.T) {
	tx := NewTxResponse(200, "OK")
	tx.AddHeader(HeaderTransferEncoding, "Chunked")

	msg, err := tx.Message(5)
	require.NoError(t, err)
	assert.NotContains(t, msg, "Content-Length")
}

func TestTxResponseDetectsResponseSplitting(t *testing.T) {
	tx := NewTxResponse(200, "OK")
	tx.AddHeader(HeaderLocation, "/ok\r\n\r\nX-Injected: evil")

	assert.False(t, tx.IsValid())
	_, err := tx.Message(0)
	assert.ErrorIs(t, err, ErrResponseSplitting)
}

func TestChunkAndLastChunk(t *testing.T) {
	c := Chunk([]byte("hello"))
	assert.Equal(t, "5\r\nhello\r\n", c)

	last := LastChunk("", "")
	assert.Equal(t, "0\r\n\r\n", last)
}

func TestLastChunkWithTrailer(t *testing.T) {
	hb := NewHeaderBlock()
	bounds := DefaultParserBounds()
	_, err := hb.Parse([]byte("X-Checksum: abc123\r\n\r\n"), &bounds)
	require.NoError(t, err)

	last := LastChunk("", hb.ToString())
	assert.Equal(t, "0\r\nx-checksum: abc123\r\n\r\n", last)
}
