package viahttp

import "bytes"

// RxOutcome is the result of feeding bytes into a receiver (spec §4.8/§4.9).
type RxOutcome uint8

const (
	// Incomplete means more bytes are needed before any outcome can be
	// reported.
	Incomplete RxOutcome = iota
	// Valid means a complete message (request or response, headers and
	// any body) is available.
	Valid
	// Chunk means one chunk of an unconcatenated chunked body is
	// available via Body().
	Chunk
	// ExpectContinue means the headers carried "Expect: 100-continue"
	// and the host should decide whether to send a 100 response before
	// the body is read.
	ExpectContinue
	// Invalid means the message violates the grammar or an invariant;
	// the error is available from the call that produced it.
	Invalid
)

type rxState uint8

const (
	rxRequestLine rxState = iota
	rxHeaders
	rxExpect
	rxContentBody
	rxChunkHeader
	rxChunkBody
	rxChunkPause
	rxTrailer
	rxDone
)

// RequestReceiver drives a byte-at-a-time request parse through request
// line, headers, and body framing, per spec §4.8. Grounded on the
// teacher's Connection.Serve keep-alive loop (shockwave/http11/connection.go)
// for the overall "line, then headers, then body" sequencing, adapted to a
// push-model Receive(buf) that reports Incomplete instead of blocking on an
// io.Reader.
type RequestReceiver struct {
	cfg *ServerConfig

	state  rxState
	rl     RequestLine
	hb     *HeaderBlock
	trailer *HeaderBlock

	isHead      bool
	isChunked   bool
	continueSent bool

	body          []byte
	bodyRemaining int64

	chHeader ChunkHeader
	chBody   ChunkBody
}

// NewRequestReceiver returns a RequestReceiver using cfg's parser bounds
// and behavioral options.
func NewRequestReceiver(cfg *ServerConfig) *RequestReceiver {
	rr := &RequestReceiver{
		cfg:     cfg,
		hb:      NewHeaderBlock(),
		trailer: NewHeaderBlock(),
	}
	rr.rl.Reset()
	return rr
}

// Reset prepares rr to parse a new request, reusing its buffers.
func (rr *RequestReceiver) Reset() {
	rr.state = rxRequestLine
	rr.rl.Reset()
	rr.hb.Reset()
	rr.trailer.Reset()
	rr.isHead = false
	rr.isChunked = false
	rr.continueSent = false
	rr.body = rr.body[:0]
	rr.bodyRemaining = 0
	rr.chHeader.Reset()
}

// Method returns the parsed (and possibly HEAD→GET translated) method.
func (rr *RequestReceiver) Method() []byte { return rr.rl.Method }

// URI returns the parsed request-URI.
func (rr *RequestReceiver) URI() []byte { return rr.rl.URI }

// MajorVersion and MinorVersion return the parsed HTTP version digits.
func (rr *RequestReceiver) MajorVersion() byte { return rr.rl.MajorVersion }
func (rr *RequestReceiver) MinorVersion() byte { return rr.rl.MinorVersion }

// Headers returns the parsed header block.
func (rr *RequestReceiver) Headers() *HeaderBlock { return rr.hb }

// Trailer returns the trailer header block parsed after a chunked body's
// terminal chunk, if any.
func (rr *RequestReceiver) Trailer() *HeaderBlock { return rr.trailer }

// Body returns the accumulated body bytes. When the most recent outcome
// was Chunk, this holds just that chunk's payload (empty for the terminal
// chunk); when Valid, the full (concatenated, if configured) body.
func (rr *RequestReceiver) Body() []byte { return rr.body }

// IsLastChunk reports whether the most recently reported Chunk outcome was
// the terminal zero-size chunk, observable alongside Trailer() for a caller
// in non-concatenating mode distinguishing it from a data-carrying chunk.
func (rr *RequestReceiver) IsLastChunk() bool { return rr.chHeader.Last }

// IsHead reports whether the original method, before HEAD→GET
// translation, was HEAD (spec §4.8 step 5).
func (rr *RequestReceiver) IsHead() bool { return rr.isHead }

// TraceBody returns the concatenation of the request line text and the
// re-emitted header block, the canonical TRACE echo payload an
// application building a TRACE response constructs itself (spec §4.8).
func (rr *RequestReceiver) TraceBody() string {
	return rr.rl.String() + rr.hb.ToString()
}

// Receive feeds buf into the receiver and returns the number of bytes
// consumed along with the resulting outcome. Incomplete outcomes may be
// returned any number of times; callers must append subsequent bytes and
// call Receive again, and must call Reset before starting the next
// message once Valid or Invalid is returned.
func (rr *RequestReceiver) Receive(buf []byte) (consumed int, outcome RxOutcome, err error) {
	bounds := &rr.cfg.ParserBounds

	for consumed <= len(buf) {
		switch rr.state {
		case rxRequestLine:
			n, perr := rr.rl.Parse(buf[consumed:], bounds)
			consumed += n
			if perr != nil {
				return consumed, Invalid, perr
			}
			if !rr.rl.Done() {
				return consumed, Incomplete, nil
			}

			if bytes.Equal(rr.rl.Method, []byte("HEAD")) {
				rr.isHead = true
				if rr.cfg.TranslateHeadToGet {
					rr.rl.Method = append(rr.rl.Method[:0], 'G', 'E', 'T')
				}
			}
			rr.state = rxHeaders

		case rxHeaders:
			n, perr := rr.hb.Parse(buf[consumed:], bounds)
			consumed += n
			if perr != nil {
				return consumed, Invalid, perr
			}
			if !rr.hb.Valid() {
				return consumed, Incomplete, nil
			}

			if rr.rl.MajorVersion == '1' && rr.rl.MinorVersion == '1' {
				if _, ok := rr.hb.Get(HeaderHost); !ok {
					return consumed, Invalid, ErrMissingHost
				}
			}

			rr.isChunked = rr.hb.IsChunked()
			rr.state = rxExpect

		case rxExpect:
			if rr.hb.ExpectContinue() && !rr.continueSent {
				rr.continueSent = true
				return consumed, ExpectContinue, nil
			}

			if bytes.Equal(rr.rl.Method, []byte("TRACE")) {
				if rr.isChunked || rr.hb.ContentLength() != 0 {
					return consumed, Invalid, ErrTraceBody
				}
				if !rr.cfg.TraceEnabled {
					return consumed, Invalid, ErrTraceNotAllowed
				}
				rr.state = rxDone
				return consumed, Valid, nil
			}

			if rr.isChunked {
				rr.chHeader.Reset()
				rr.body = rr.body[:0]
				rr.state = rxChunkHeader
				continue
			}

			_, hasContentLength := rr.hb.Get(HeaderContentLength)
			cl := rr.hb.ContentLength()
			if cl < 0 {
				return consumed, Invalid, ErrInvalidContentLength
			}
			if cl > bounds.MaxContentLength {
				return consumed, Invalid, ErrContentTooLarge
			}
			if cl == 0 {
				if !hasContentLength && consumed < len(buf) {
					// Bytes past the header block arrived with no
					// Content-Length declared and no chunked framing:
					// there is no way to know where the body ends.
					return consumed, Invalid, ErrLengthRequired
				}
				rr.body = rr.body[:0]
				rr.state = rxDone
				return consumed, Valid, nil
			}
			rr.body = rr.body[:0]
			rr.bodyRemaining = cl
			rr.state = rxContentBody

		case rxContentBody:
			n := int64(len(buf) - consumed)
			if n > rr.bodyRemaining {
				n = rr.bodyRemaining
			}
			if n > 0 {
				rr.body = append(rr.body, buf[consumed:consumed+int(n)]...)
				consumed += int(n)
				rr.bodyRemaining -= n
			}
			if rr.bodyRemaining > 0 {
				return consumed, Incomplete, nil
			}
			rr.state = rxDone
			return consumed, Valid, nil

		case rxChunkHeader:
			n, perr := rr.chHeader.Parse(buf[consumed:], bounds)
			consumed += n
			if perr != nil {
				return consumed, Invalid, perr
			}
			if !rr.chHeader.Done() {
				return consumed, Incomplete, nil
			}
			if rr.chHeader.Last {
				if !rr.cfg.ConcatenateChunks {
					rr.body = rr.body[:0]
				}
				rr.state = rxTrailer
				continue
			}
			if !rr.cfg.ConcatenateChunks {
				rr.body = rr.body[:0]
			}
			if int64(len(rr.body))+int64(rr.chHeader.Size) > bounds.MaxContentLength {
				return consumed, Invalid, ErrContentTooLarge
			}
			rr.chBody.Reset(rr.chHeader.Size)
			rr.state = rxChunkBody

		case rxChunkBody:
			n, perr := rr.chBody.Parse(buf[consumed:], bounds, &rr.body)
			consumed += n
			if perr != nil {
				return consumed, Invalid, perr
			}
			if !rr.chBody.Done() {
				return consumed, Incomplete, nil
			}
			if rr.cfg.ConcatenateChunks {
				rr.chHeader.Reset()
				rr.state = rxChunkHeader
				continue
			}
			rr.state = rxChunkPause
			return consumed, Chunk, nil

		case rxChunkPause:
			rr.chHeader.Reset()
			rr.state = rxChunkHeader
			continue

		case rxTrailer:
			n, perr := rr.trailer.Parse(buf[consumed:], bounds)
			consumed += n
			if perr != nil {
				return consumed, Invalid, perr
			}
			if !rr.trailer.Valid() {
				return consumed, Incomplete, nil
			}
			rr.state = rxDone
			if !rr.cfg.ConcatenateChunks {
				// The terminal chunk is itself surfaced as a Chunk
				// outcome (empty body, trailers via Trailer()) rather
				// than folded into Valid, matching the per-chunk
				// outcome stream unconcatenated mode promises.
				return consumed, Chunk, nil
			}
			return consumed, Valid, nil

		case rxDone:
			return consumed, Valid, nil
		}
	}
	return consumed, Incomplete, nil
}
