package viahttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLineParseBasic(t *testing.T) {
	bounds := DefaultParserBounds()
	var rl RequestLine
	rl.Reset()

	data := []byte("GET /index.html HTTP/1.1\r\n")
	n, err := rl.Parse(data, &bounds)
	require.NoError(t, err)
	assert.True(t, rl.Done())
	assert.Equal(t, len(data), n)
	assert.Equal(t, "GET", string(rl.Method))
	assert.Equal(t, "/index.html", string(rl.URI))
	assert.Equal(t, byte('1'), rl.MajorVersion)
	assert.Equal(t, byte('1'), rl.MinorVersion)
}

func TestRequestLineIncompleteAcrossCalls(t *testing.T) {
	bounds := DefaultParserBounds()
	var rl RequestLine
	rl.Reset()

	n, err := rl.Parse([]byte("GET /foo"), &bounds)
	require.NoError(t, err)
	require.False(t, rl.Done())
	assert.Equal(t, 8, n)

	_, err = rl.Parse([]byte(" HTTP/1.0\r\n"), &bounds)
	require.NoError(t, err)
	require.True(t, rl.Done())
	assert.Equal(t, "/foo", string(rl.URI))
	assert.True(t, rl.IsHTTP10OrEarlier())
}

func TestRequestLineMethodTooLong(t *testing.T) {
	bounds := DefaultParserBounds()
	bounds.MaxMethodLength = 3

	var rl RequestLine
	rl.Reset()
	_, err := rl.Parse([]byte("GETT /x HTTP/1.1\r\n"), &bounds)
	assert.ErrorIs(t, err, ErrMethodTooLong)
}

func TestRequestLineURITooLong(t *testing.T) {
	bounds := DefaultParserBounds()
	bounds.MaxURILength = 2

	var rl RequestLine
	rl.Reset()
	_, err := rl.Parse([]byte("GET /abc HTTP/1.1\r\n"), &bounds)
	assert.ErrorIs(t, err, ErrURITooLong)
}

func TestRequestLineRejectsBareLFWhenStrict(t *testing.T) {
	bounds := DefaultParserBounds()
	bounds.StrictCRLF = true

	var rl RequestLine
	rl.Reset()
	_, err := rl.Parse([]byte("GET / HTTP/1.1\n"), &bounds)
	assert.Error(t, err)
}

func TestRequestLineMalformed(t *testing.T) {
	bounds := DefaultParserBounds()
	var rl RequestLine
	rl.Reset()
	_, err := rl.Parse([]byte("get / HTTP/1.1\r\n"), &bounds)
	assert.ErrorIs(t, err, ErrMalformedRequestLine)
}
