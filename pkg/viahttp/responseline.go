package viahttp

// Response-line parser (spec §4.6): parses "HTTP/M.N SP STATUS SP REASON
// CRLF" with bounded status/reason lengths. Mirrors RequestLine's shape;
// see requestline.go for the grounding note.
type rspState uint8

const (
	rspHTTPLiteral rspState = iota
	rspMajor
	rspDot
	rspMinor
	rspWS
	rspStatus
	rspReasonWS
	rspReason
	rspCR
	rspLF
	rspDone
)

// ResponseLine holds the parse state of an HTTP response (status) line.
type ResponseLine struct {
	state rspState

	MajorVersion byte
	MinorVersion byte
	Status       int
	Reason       []byte

	litIdx int
	ws     int
}

// Reset prepares rl to parse a new response line.
func (rl *ResponseLine) Reset() {
	rl.state = rspHTTPLiteral
	rl.MajorVersion = 0
	rl.MinorVersion = 0
	rl.Status = 0
	rl.Reason = rl.Reason[:0]
	rl.litIdx = 0
	rl.ws = 0
}

// Done reports whether the response line has been fully parsed.
func (rl *ResponseLine) Done() bool {
	return rl.state == rspDone
}

// Parse feeds buf into the response-line state machine. See
// FieldLine.Parse for the Incomplete/Done/err contract.
func (rl *ResponseLine) Parse(buf []byte, bounds *ParserBounds) (consumed int, err error) {
	for consumed < len(buf) {
		b := buf[consumed]

		switch rl.state {
		case rspHTTPLiteral:
			if b != httpSlashLiteral[rl.litIdx] {
				consumed++
				return consumed, ErrMalformedResponseLine
			}
			rl.litIdx++
			consumed++
			if rl.litIdx == len(httpSlashLiteral) {
				rl.state = rspMajor
			}

		case rspMajor:
			if b < '0' || b > '9' {
				consumed++
				return consumed, ErrMalformedResponseLine
			}
			rl.MajorVersion = b
			rl.state = rspDot
			consumed++

		case rspDot:
			if b != '.' {
				consumed++
				return consumed, ErrMalformedResponseLine
			}
			rl.state = rspMinor
			consumed++

		case rspMinor:
			if b < '0' || b > '9' {
				consumed++
				return consumed, ErrMalformedResponseLine
			}
			rl.MinorVersion = b
			rl.state = rspWS
			rl.ws = 0
			consumed++

		case rspWS:
			if b == ' ' || b == '\t' {
				rl.ws++
				if rl.ws > bounds.MaxWhitespaceChars {
					consumed++
					return consumed, ErrMalformedResponseLine
				}
				consumed++
			} else if rl.ws == 0 {
				// at least one SP is required between version and status
				consumed++
				return consumed, ErrMalformedResponseLine
			} else {
				rl.state = rspStatus
			}

		case rspStatus:
			switch {
			case b >= '0' && b <= '9':
				rl.Status = rl.Status*10 + int(b-'0')
				if rl.Status > bounds.MaxStatusNumber {
					consumed++
					return consumed, ErrMalformedResponseLine
				}
				consumed++
			case b == ' ' || b == '\t':
				rl.state = rspReasonWS
				rl.ws = 1
				consumed++
			case isEndOfLine(b):
				// status with no reason phrase is permitted
				rl.state = rspCR
			default:
				consumed++
				return consumed, ErrMalformedResponseLine
			}

		case rspReasonWS:
			if b == ' ' || b == '\t' {
				rl.ws++
				if rl.ws > bounds.MaxWhitespaceChars {
					consumed++
					return consumed, ErrMalformedResponseLine
				}
				consumed++
			} else {
				rl.state = rspReason
			}

		case rspReason:
			if isEndOfLine(b) {
				rl.state = rspCR
			} else {
				rl.Reason = append(rl.Reason, b)
				if len(rl.Reason) > bounds.MaxReasonLength {
					consumed++
					return consumed, ErrMalformedResponseLine
				}
				consumed++
			}

		case rspCR:
			consumed++
			switch b {
			case '\r':
				rl.state = rspLF
			case '\n':
				if bounds.StrictCRLF {
					return consumed, ErrMalformedResponseLine
				}
				rl.state = rspDone
				return consumed, nil
			default:
				return consumed, ErrMalformedResponseLine
			}

		case rspLF:
			consumed++
			if b != '\n' {
				return consumed, ErrMalformedResponseLine
			}
			rl.state = rspDone
			return consumed, nil
		}
	}
	return consumed, nil
}
