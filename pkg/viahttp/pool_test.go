package viahttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPoolGetPutRoundTrip(t *testing.T) {
	bb := GetBuffer()
	assert.Empty(t, bb.B)

	bb.B = append(bb.B, []byte("hello")...)
	assert.Equal(t, "hello", string(bb.B))

	PutBuffer(bb)

	bb2 := GetBuffer()
	assert.Empty(t, bb2.B, "Put resets the buffer's length for its next caller")
}
