package viahttp

// ResponseReceiver drives a byte-at-a-time response parse through status
// line, headers, and body framing, per spec §4.9: Content-Length, chunked,
// or (absent both) read-until-close framing. Grounded on RequestReceiver's
// shape (requestrx.go); the read-until-close path additionally preserves
// spec §9 Open Question (2): the core only arms read-until-close framing
// once at least one body byte has actually arrived, so a connection that
// closes after the headers but before any body byte is reported as
// Incomplete, not as a complete zero-length response.
type ResponseReceiver struct {
	cfg *ClientConfig

	state   rxState
	rl      ResponseLine
	hb      *HeaderBlock
	trailer *HeaderBlock

	isChunked    bool
	readUntilClose bool
	sawBodyByte  bool

	body          []byte
	bodyRemaining int64

	chHeader ChunkHeader
	chBody   ChunkBody

	// NoBodyExpected, set by the caller before each message from the
	// request method/status pairing (e.g. a response to HEAD, or a 204
	// /304), suppresses all body framing regardless of headers.
	NoBodyExpected bool
}

// NewResponseReceiver returns a ResponseReceiver using cfg's parser bounds.
func NewResponseReceiver(cfg *ClientConfig) *ResponseReceiver {
	rr := &ResponseReceiver{
		cfg:     cfg,
		hb:      NewHeaderBlock(),
		trailer: NewHeaderBlock(),
	}
	rr.rl.Reset()
	return rr
}

// Reset prepares rr to parse a new response, reusing its buffers.
func (rr *ResponseReceiver) Reset() {
	rr.state = rxRequestLine // reused as "status line" state for this type
	rr.rl.Reset()
	rr.hb.Reset()
	rr.trailer.Reset()
	rr.isChunked = false
	rr.readUntilClose = false
	rr.sawBodyByte = false
	rr.body = rr.body[:0]
	rr.bodyRemaining = 0
	rr.chHeader.Reset()
	rr.NoBodyExpected = false
}

// Status returns the parsed status code.
func (rr *ResponseReceiver) Status() int { return rr.rl.Status }

// Reason returns the parsed reason phrase.
func (rr *ResponseReceiver) Reason() []byte { return rr.rl.Reason }

// MajorVersion and MinorVersion return the parsed HTTP version digits.
func (rr *ResponseReceiver) MajorVersion() byte { return rr.rl.MajorVersion }
func (rr *ResponseReceiver) MinorVersion() byte { return rr.rl.MinorVersion }

// Headers returns the parsed header block.
func (rr *ResponseReceiver) Headers() *HeaderBlock { return rr.hb }

// Trailer returns the trailer header block parsed after a chunked body's
// terminal chunk, if any.
func (rr *ResponseReceiver) Trailer() *HeaderBlock { return rr.trailer }

// Body returns the accumulated body bytes, with the same Chunk/Valid
// semantics as RequestReceiver.Body.
func (rr *ResponseReceiver) Body() []byte { return rr.body }

// IsLastChunk reports whether the most recently reported Chunk outcome was
// the terminal zero-size chunk, as RequestReceiver.IsLastChunk.
func (rr *ResponseReceiver) IsLastChunk() bool { return rr.chHeader.Last }

// Receive feeds buf into the receiver and returns the number of bytes
// consumed along with the resulting outcome, following the same contract
// as RequestReceiver.Receive. closed must be true when the caller knows
// the transport has reached EOF, so that a read-until-close body can be
// finalized as Valid.
func (rr *ResponseReceiver) Receive(buf []byte, closed bool) (consumed int, outcome RxOutcome, err error) {
	bounds := &rr.cfg.ParserBounds

	for consumed <= len(buf) {
		switch rr.state {
		case rxRequestLine: // status line
			n, perr := rr.rl.Parse(buf[consumed:], bounds)
			consumed += n
			if perr != nil {
				return consumed, Invalid, perr
			}
			if !rr.rl.Done() {
				if closed {
					return consumed, Invalid, ErrMalformedResponseLine
				}
				return consumed, Incomplete, nil
			}
			rr.state = rxHeaders

		case rxHeaders:
			n, perr := rr.hb.Parse(buf[consumed:], bounds)
			consumed += n
			if perr != nil {
				return consumed, Invalid, perr
			}
			if !rr.hb.Valid() {
				if closed {
					return consumed, Invalid, ErrMalformedLine
				}
				return consumed, Incomplete, nil
			}
			rr.isChunked = rr.hb.IsChunked()
			rr.state = rxExpect

		case rxExpect:
			if rr.NoBodyExpected || rr.isNoBodyStatus() {
				rr.body = rr.body[:0]
				rr.state = rxDone
				return consumed, Valid, nil
			}

			if rr.isChunked {
				rr.chHeader.Reset()
				rr.body = rr.body[:0]
				rr.state = rxChunkHeader
				continue
			}

			cl := rr.hb.ContentLength()
			if _, has := rr.hb.Get(HeaderContentLength); has && cl < 0 {
				return consumed, Invalid, ErrInvalidContentLength
			}
			if _, has := rr.hb.Get(HeaderContentLength); has {
				if cl > bounds.MaxContentLength {
					return consumed, Invalid, ErrContentTooLarge
				}
				if cl == 0 {
					rr.body = rr.body[:0]
					rr.state = rxDone
					return consumed, Valid, nil
				}
				rr.body = rr.body[:0]
				rr.bodyRemaining = cl
				rr.state = rxContentBody
				continue
			}

			// Neither chunked nor Content-Length: read until the
			// transport signals close (spec §4.9, §9 Open Question 2).
			rr.readUntilClose = true
			rr.body = rr.body[:0]
			rr.state = rxContentBody

		case rxContentBody:
			if rr.readUntilClose {
				avail := len(buf) - consumed
				if avail > 0 {
					rr.sawBodyByte = true
					if int64(len(rr.body)+avail) > bounds.MaxBodySize {
						return consumed, Invalid, ErrContentTooLarge
					}
					rr.body = append(rr.body, buf[consumed:]...)
					consumed = len(buf)
				}
				if closed && rr.sawBodyByte {
					rr.state = rxDone
					return consumed, Valid, nil
				}
				// Closed before any body byte arrived: per spec §9 Open
				// Question (2), read-until-close framing is only armed
				// once a body byte has actually been read, so this case
				// (including closed with zero bytes) is reported as
				// Incomplete rather than a zero-length Valid response.
				return consumed, Incomplete, nil
			}

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
				if closed {
					return consumed, Invalid, ErrConnectionClosed
				}
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

// isNoBodyStatus reports whether the parsed status code is one RFC 7230
// §3.3 forbids from carrying a body (1xx, 204, 304).
func (rr *ResponseReceiver) isNoBodyStatus() bool {
	s := rr.rl.Status
	return (s >= 100 && s < 200) || s == 204 || s == 304
}
