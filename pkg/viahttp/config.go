package viahttp

import "time"

// ParserBounds holds the construction-time parser bounds enumerated in spec
// §3. They are never mutated once a Parser-owning type (RequestReceiver,
// ResponseReceiver, TxRequest/TxResponse encoders) has been constructed —
// unlike the teacher, which fixes several of these as Go generic/template
// parameters (shockwave's MaxHeaders/MaxHeaderName/MaxHeaderValue
// constants), every bound here is a runtime struct field, per spec §9's
// design note: "Targets should make all bounds runtime configuration
// members of the parser; the slight cost is amortised and the ergonomic
// gain is significant."
//
// config:"..." struct tags let `cmd/viahttpd` load these through
// github.com/elastic/go-ucfg from YAML/JSON/env; the library itself never
// touches go-ucfg.
type ParserBounds struct {
	// MaxURILength bounds the request-URI (request only).
	MaxURILength int `config:"max_uri_length"`

	// MaxMethodLength bounds the method token (request only).
	MaxMethodLength int `config:"max_method_length"`

	// MaxStatusNumber bounds the parsed status integer (response only).
	MaxStatusNumber int `config:"max_status_number"`

	// MaxReasonLength bounds the reason phrase (response only).
	MaxReasonLength int `config:"max_reason_length"`

	// MaxHeaderNumber bounds the number of header lines per block.
	MaxHeaderNumber int `config:"max_header_number"`

	// MaxHeaderLength bounds the cumulative name+value byte count across a
	// header block.
	MaxHeaderLength int `config:"max_header_length"`

	// MaxLineLength bounds a single header field line.
	MaxLineLength int `config:"max_line_length"`

	// MaxWhitespaceChars bounds consecutive SP/HT runs at any one parse
	// position.
	MaxWhitespaceChars int `config:"max_whitespace_chars"`

	// StrictCRLF, if true, rejects a bare LF not preceded by CR.
	StrictCRLF bool `config:"strict_crlf"`

	// MaxContentLength bounds a request body (Content-Length or
	// concatenated chunked framing); requests exceeding it yield 413.
	MaxContentLength int64 `config:"max_content_length"`

	// MaxChunkSize bounds a single chunk's declared size.
	MaxChunkSize int64 `config:"max_chunk_size"`

	// MaxBodySize bounds a response body read under "read until close"
	// framing (spec §4.9, §9 Open Question 2).
	MaxBodySize int64 `config:"max_body_size"`
}

// DefaultParserBounds returns the bounds spec §6 lists as configuration
// defaults, plus the RFC 7230-recommended structural limits spec §3 bounds
// by type range (max_header_number/max_line_length ≤ 65534).
func DefaultParserBounds() ParserBounds {
	return ParserBounds{
		MaxURILength:       8 * 1024,
		MaxMethodLength:    32,
		MaxStatusNumber:    999,
		MaxReasonLength:    512,
		MaxHeaderNumber:    256,
		MaxHeaderLength:    64 * 1024,
		MaxLineLength:      8 * 1024,
		MaxWhitespaceChars: 32,
		StrictCRLF:         false,
		MaxContentLength:   1 << 20, // 1 MiB, spec §6 default
		MaxChunkSize:       1 << 20, // 1 MiB, spec §6 default
		MaxBodySize:        16 << 20,
	}
}

// ServerConfig is the per-server configuration surface enumerated in spec
// §6.
type ServerConfig struct {
	ParserBounds `config:",inline"`

	// TranslateHeadToGet rewrites HEAD to GET after request-line parsing,
	// preserving IsHead on the Request (spec §4.8 step 5). Default true.
	TranslateHeadToGet bool `config:"translate_head_to_get"`

	// TraceEnabled allows TRACE requests through instead of the default
	// 405 (spec §4.8's TRACE rule).
	TraceEnabled bool `config:"trace_enabled"`

	// AutoDisconnectOnInvalid closes the connection after an Invalid
	// outcome is reported to the host (spec §4.11).
	AutoDisconnectOnInvalid bool `config:"auto_disconnect_on_invalid"`

	// ConcatenateChunks accumulates chunked bodies into one Valid outcome
	// instead of surfacing a Chunk outcome per chunk. Registering an
	// OnChunk callback on Server toggles this off, mirroring spec §6.
	ConcatenateChunks bool `config:"concatenate_chunks"`

	// ReceiveBufferSize is the per-connection receive buffer size
	// (spec §4.11's "default 8192 bytes, configurable").
	ReceiveBufferSize int `config:"receive_buffer_size"`

	// IdleTimeout closes a connection that has neither sent nor received
	// for this long (spec §5 "Cancellation and timeouts").
	IdleTimeout time.Duration `config:"idle_timeout"`

	// Concurrency is the number of goroutines sharing the accept loop in
	// thread-pool mode (spec §5's "Optional thread-pool mode"). 0 or 1
	// means the single-threaded cooperative default.
	Concurrency int `config:"concurrency"`
}

// DefaultServerConfig returns the defaults spec §6 enumerates.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ParserBounds:            DefaultParserBounds(),
		TranslateHeadToGet:      true,
		TraceEnabled:            false,
		AutoDisconnectOnInvalid: false,
		ConcatenateChunks:       true,
		ReceiveBufferSize:       8192,
		IdleTimeout:             60 * time.Second,
		Concurrency:             1,
	}
}

// ClientConfig is the per-client configuration surface enumerated in spec
// §6.
type ClientConfig struct {
	ParserBounds `config:",inline"`

	// ReceiveBufferSize is the per-connection receive buffer size.
	ReceiveBufferSize int `config:"receive_buffer_size"`

	// IdleTimeout is carried for symmetry with ServerConfig.IdleTimeout;
	// ClientConnection does not apply it, and its reads block until the
	// transport returns.
	IdleTimeout time.Duration `config:"idle_timeout"`

	// ConcatenateChunks accumulates a chunked response body into one
	// Valid outcome instead of surfacing a Chunk outcome per chunk,
	// mirroring ServerConfig.ConcatenateChunks on the response side.
	ConcatenateChunks bool `config:"concatenate_chunks"`
}

// DefaultClientConfig returns client-side defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ParserBounds:      DefaultParserBounds(),
		ReceiveBufferSize: 8192,
		IdleTimeout:       60 * time.Second,
		ConcatenateChunks: true,
	}
}
