package viahttp

import "strconv"

// Request-line parser (spec §4.5): parses "METHOD SP URI SP HTTP/M.N CRLF"
// with bounded method/URI lengths and whitespace runs. Resumable across
// Parse calls like FieldLine, grounded on the teacher's parseRequestLine
// (shockwave/http11/parser.go) for validation order (method → URI →
// version) and on intuitivelabs-httpsp/parse_fline.go for the
// re-entrant-state-byte shape a streaming transport needs.
type rlState uint8

const (
	rlMethod rlState = iota
	rlMethodWS
	rlURI
	rlURIWS
	rlHTTPLiteral
	rlMajor
	rlDot
	rlMinor
	rlCR
	rlLF
	rlDone
)

var httpSlashLiteral = []byte("HTTP/")

// RequestLine holds the parse state of an HTTP request line.
type RequestLine struct {
	state rlState

	Method       []byte
	URI          []byte
	MajorVersion byte // ASCII digit, e.g. '1'
	MinorVersion byte

	litIdx int
	ws     int
}

// Reset prepares rl to parse a new request line.
func (rl *RequestLine) Reset() {
	rl.state = rlMethod
	rl.Method = rl.Method[:0]
	rl.URI = rl.URI[:0]
	rl.MajorVersion = 0
	rl.MinorVersion = 0
	rl.litIdx = 0
	rl.ws = 0
}

// Done reports whether the request line has been fully parsed.
func (rl *RequestLine) Done() bool {
	return rl.state == rlDone
}

// IsHTTP10OrEarlier reports whether the parsed version is ≤ HTTP/1.0.
func (rl *RequestLine) IsHTTP10OrEarlier() bool {
	return rl.MajorVersion < '1' || (rl.MajorVersion == '1' && rl.MinorVersion == '0')
}

// String re-emits the request line as "METHOD URI HTTP/M.N\r\n", used by
// RequestReceiver.TraceBody to build the canonical TRACE echo payload
// (spec §4.8's trace_body()).
func (rl *RequestLine) String() string {
	return string(rl.Method) + " " + string(rl.URI) + " HTTP/" +
		strconv.Itoa(int(rl.MajorVersion-'0')) + "." + strconv.Itoa(int(rl.MinorVersion-'0')) + "\r\n"
}

// Parse feeds buf into the request-line state machine and returns the
// number of bytes consumed. See FieldLine.Parse for the Incomplete/Done/err
// contract.
func (rl *RequestLine) Parse(buf []byte, bounds *ParserBounds) (consumed int, err error) {
	for consumed < len(buf) {
		b := buf[consumed]

		switch rl.state {
		case rlMethod:
			switch {
			case isUpperAlpha(b):
				rl.Method = append(rl.Method, b)
				if len(rl.Method) > bounds.MaxMethodLength {
					consumed++
					return consumed, ErrMethodTooLong
				}
				consumed++
			case (b == ' ' || b == '\t') && len(rl.Method) > 0:
				rl.state = rlMethodWS
				rl.ws = 1
				consumed++
			default:
				consumed++
				return consumed, ErrMalformedRequestLine
			}

		case rlMethodWS:
			if b == ' ' || b == '\t' {
				rl.ws++
				if rl.ws > bounds.MaxWhitespaceChars {
					consumed++
					return consumed, ErrMalformedRequestLine
				}
				consumed++
			} else {
				rl.state = rlURI
			}

		case rlURI:
			switch {
			case isEndOfLine(b):
				consumed++
				return consumed, ErrMalformedRequestLine
			case (b == ' ' || b == '\t') && len(rl.URI) > 0:
				rl.state = rlURIWS
				rl.ws = 1
				consumed++
			default:
				rl.URI = append(rl.URI, b)
				if len(rl.URI) > bounds.MaxURILength {
					consumed++
					return consumed, ErrURITooLong
				}
				consumed++
			}

		case rlURIWS:
			if b == ' ' || b == '\t' {
				rl.ws++
				if rl.ws > bounds.MaxWhitespaceChars {
					consumed++
					return consumed, ErrMalformedRequestLine
				}
				consumed++
			} else {
				rl.state = rlHTTPLiteral
				rl.litIdx = 0
			}

		case rlHTTPLiteral:
			if b != httpSlashLiteral[rl.litIdx] {
				consumed++
				return consumed, ErrMalformedRequestLine
			}
			rl.litIdx++
			consumed++
			if rl.litIdx == len(httpSlashLiteral) {
				rl.state = rlMajor
			}

		case rlMajor:
			if b < '0' || b > '9' {
				consumed++
				return consumed, ErrMalformedRequestLine
			}
			rl.MajorVersion = b
			rl.state = rlDot
			consumed++

		case rlDot:
			if b != '.' {
				consumed++
				return consumed, ErrMalformedRequestLine
			}
			rl.state = rlMinor
			consumed++

		case rlMinor:
			if b < '0' || b > '9' {
				consumed++
				return consumed, ErrMalformedRequestLine
			}
			rl.MinorVersion = b
			rl.state = rlCR
			consumed++

		case rlCR:
			consumed++
			switch b {
			case '\r':
				rl.state = rlLF
			case '\n':
				if bounds.StrictCRLF {
					return consumed, ErrMalformedRequestLine
				}
				rl.state = rlDone
				return consumed, nil
			default:
				return consumed, ErrMalformedRequestLine
			}

		case rlLF:
			consumed++
			if b != '\n' {
				return consumed, ErrMalformedRequestLine
			}
			rl.state = rlDone
			return consumed, nil
		}
	}
	return consumed, nil
}
