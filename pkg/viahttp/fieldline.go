package viahttp

// Field-line parser (spec §4.3): a streaming parser for one header line,
// producing a lowercased name and a value, including line-folding
// continuation. Grounded in its resumable-offset shape on
// intuitivelabs-httpsp/parse_fline.go (a small state byte plus accumulated
// fields, re-entrant across Parse calls) rather than the teacher's
// whole-buffer bytes.Index scan, which cannot report "need more bytes"
// mid-line the way a streaming transport requires.
type flState uint8

const (
	flName flState = iota
	flValueLS
	flValue
	flLF
	flDone
)

// FieldLine holds the parse state of a single "Name: value\r\n" header
// line. Zero value is ready to parse; call Reset between lines.
type FieldLine struct {
	state   flState
	Name    []byte // accumulated, lowercased
	Value   []byte // accumulated value bytes
	ws      int    // whitespace run counter, capped by MaxWhitespaceChars
	lineLen int    // cumulative bytes consumed for this line
}

// Reset prepares fl to parse a new line, reusing its backing arrays.
func (fl *FieldLine) Reset() {
	fl.state = flName
	fl.Name = fl.Name[:0]
	fl.Value = fl.Value[:0]
	fl.ws = 0
	fl.lineLen = 0
}

// Done reports whether the line has been fully parsed (through its
// terminating LF).
func (fl *FieldLine) Done() bool {
	return fl.state == flDone
}

// ResumeFolding appends one SP to Value and resets state to VALUE_LS, for
// use when the header-block parser has peeked a line-folding continuation
// byte (SP/HT) immediately following this line's terminating LF. This is
// done inline, before any other state is cleared — the ordering spec §9's
// Open Question (1) calls out as a source behavior to preserve exactly.
func (fl *FieldLine) ResumeFolding() {
	fl.Value = append(fl.Value, ' ')
	fl.state = flValueLS
	fl.ws = 0
}

// Parse feeds buf into the line state machine starting from fl's current
// state and returns the number of bytes consumed. A nil error with
// fl.Done() false means more bytes are needed (Incomplete); a nil error
// with fl.Done() true means the line, through its terminating LF, was
// fully consumed; a non-nil error is fatal for this line.
func (fl *FieldLine) Parse(buf []byte, bounds *ParserBounds) (consumed int, err error) {
	for consumed < len(buf) {
		b := buf[consumed]

		switch fl.state {
		case flName:
			switch {
			case b == ':':
				fl.state = flValueLS
				consumed++
				fl.lineLen++
			case b == '-' || isUpperAlpha(b) || (b >= 'a' && b <= 'z'):
				fl.Name = append(fl.Name, toLowerByte(b))
				consumed++
				fl.lineLen++
			default:
				consumed++
				return consumed, ErrMalformedLine
			}

		case flValueLS:
			if b == ' ' || b == '\t' {
				fl.ws++
				consumed++
				fl.lineLen++
				if fl.ws > bounds.MaxWhitespaceChars {
					return consumed, ErrMalformedLine
				}
			} else {
				// First non-blank byte: switch to VALUE and reprocess it.
				fl.state = flValue
			}

		case flValue:
			switch {
			case b == '\r':
				fl.state = flLF
				consumed++
				fl.lineLen++
			case b == '\n':
				consumed++
				fl.lineLen++
				if bounds.StrictCRLF {
					return consumed, ErrMalformedLine
				}
				fl.state = flDone
				return consumed, nil
			default:
				fl.Value = append(fl.Value, b)
				consumed++
				fl.lineLen++
			}

		case flLF:
			consumed++
			fl.lineLen++
			if b != '\n' {
				return consumed, ErrMalformedLine
			}
			fl.state = flDone
			return consumed, nil
		}

		if fl.lineLen > bounds.MaxLineLength {
			return consumed, ErrLineTooLong
		}
	}
	return consumed, nil
}
