package viahttp

import "github.com/valyala/bytebufferpool"

// Buffer pooling for per-connection receive buffers; transmit data queued
// by Connection.Send is copied into plain allocations, not pooled buffers.
// Grounded on the
// teacher's sync.Pool-of-[]byte pattern (shockwave/http11/connection.go's
// GetParser/PutRequest pair), but backed by bytebufferpool.Pool so the
// buffers participate in that library's size-calibrated reuse instead of a
// hand-rolled pool.
var bufferPool bytebufferpool.Pool

// GetBuffer returns a pooled, zero-length buffer (any leftover content from
// its previous use is reset away). Server.serveOne and
// ClientConnection.ReadResponse each acquire one for their connection's
// receive buffer, sizing it with a slice of its backing array rather than
// allocating a fresh []byte per connection.
func GetBuffer() *bytebufferpool.ByteBuffer {
	bb := bufferPool.Get()
	bb.Reset()
	return bb
}

// PutBuffer returns buf to the pool for reuse.
func PutBuffer(buf *bytebufferpool.ByteBuffer) {
	bufferPool.Put(buf)
}
