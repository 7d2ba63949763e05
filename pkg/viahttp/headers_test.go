package viahttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderBlockParseBasic(t *testing.T) {
	bounds := DefaultParserBounds()
	hb := NewHeaderBlock()

	data := []byte("Host: example.com\r\nContent-Length: 5\r\n\r\n")
	n, err := hb.Parse(data, &bounds)
	require.NoError(t, err)
	assert.True(t, hb.Valid())
	assert.Equal(t, len(data), n)

	v, ok := hb.Get("host")
	require.True(t, ok)
	assert.Equal(t, "example.com", v)
	assert.Equal(t, int64(5), hb.ContentLength())
}

func TestHeaderBlockMergesRepeatedNamesWithComma(t *testing.T) {
	bounds := DefaultParserBounds()
	hb := NewHeaderBlock()

	data := []byte("Vary: accept\r\nVary: encoding\r\n\r\n")
	_, err := hb.Parse(data, &bounds)
	require.NoError(t, err)
	v, _ := hb.Get("vary")
	assert.Equal(t, "accept,encoding", v)
}

func TestHeaderBlockMergesCookieNamesWithSemicolon(t *testing.T) {
	bounds := DefaultParserBounds()
	hb := NewHeaderBlock()

	data := []byte("Cookie: a=1\r\nCookie: b=2\r\n\r\n")
	_, err := hb.Parse(data, &bounds)
	require.NoError(t, err)
	v, _ := hb.Get("cookie")
	assert.Equal(t, "a=1;b=2", v)
}

func TestHeaderBlockLineFolding(t *testing.T) {
	bounds := DefaultParserBounds()
	hb := NewHeaderBlock()

	data := []byte("X-Thing: first\r\n second\r\n\r\n")
	_, err := hb.Parse(data, &bounds)
	require.NoError(t, err)
	v, _ := hb.Get("x-thing")
	assert.Equal(t, "first second", v)
}

func TestHeaderBlockIncompleteAcrossCalls(t *testing.T) {
	bounds := DefaultParserBounds()
	hb := NewHeaderBlock()

	n, err := hb.Parse([]byte("Host: exam"), &bounds)
	require.NoError(t, err)
	require.False(t, hb.Valid())
	assert.Equal(t, 10, n)

	_, err = hb.Parse([]byte("ple.com\r\n\r\n"), &bounds)
	require.NoError(t, err)
	require.True(t, hb.Valid())
	v, _ := hb.Get("host")
	assert.Equal(t, "example.com", v)
}

func TestHeaderBlockTooManyHeaders(t *testing.T) {
	bounds := DefaultParserBounds()
	bounds.MaxHeaderNumber = 1
	hb := NewHeaderBlock()

	_, err := hb.Parse([]byte("A: 1\r\nB: 2\r\n\r\n"), &bounds)
	assert.ErrorIs(t, err, ErrTooManyHeaders)
}

func TestHeaderBlockResetIsIdempotent(t *testing.T) {
	bounds := DefaultParserBounds()
	hb := NewHeaderBlock()
	_, _ = hb.Parse([]byte("Host: example.com\r\n\r\n"), &bounds)
	hb.Reset()
	hb.Reset()
	assert.False(t, hb.Valid())
	_, ok := hb.Get("host")
	assert.False(t, ok)
}

func TestHeaderBlockToStringSortedNoTrailingBlank(t *testing.T) {
	bounds := DefaultParserBounds()
	hb := NewHeaderBlock()
	_, err := hb.Parse([]byte("B: 2\r\nA: 1\r\n\r\n"), &bounds)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\r\nb: 2\r\n", hb.ToString())
}
