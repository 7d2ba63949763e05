package viahttp

import (
	"strconv"
	"strings"
)

// Encoders (spec §4.10): build outgoing request/response messages and emit
// a last-chunk terminator, with a response-splitting check over the
// accumulated header text before any of it is sent. Grounded on the
// teacher's ResponseWriter.writeHeaders (shockwave/http11/response.go) for
// the add-then-join style, generalized to both directions since spec §4.10
// has no request/response asymmetry in its encoder shape.
type txHeaders struct {
	lines []string
}

func (h *txHeaders) add(name, value string) {
	h.lines = append(h.lines, ToHeaderLine(name, value))
}

// has reports whether a header named name (case-insensitive) has already
// been added, used by Message to decide whether to auto-insert
// Content-Length (spec §4.10: auto-insert iff neither Content-Length nor
// Transfer-Encoding is already present).
func (h *txHeaders) has(name string) bool {
	prefix := strings.ToLower(name) + ":"
	for _, l := range h.lines {
		if strings.HasPrefix(strings.ToLower(l), prefix) {
			return true
		}
	}
	return false
}

func (h *txHeaders) join() string {
	var sb strings.Builder
	for _, l := range h.lines {
		sb.WriteString(l)
	}
	return sb.String()
}

// hasSplitting scans accumulated header text for an embedded blank line: an
// LF whose previous byte is LF, or whose previous byte is CR and the byte
// before that is LF, i.e. a double line terminator injected within a header
// value. Grounded on spec §4.10's response-splitting detection note and the
// original are_headers_split.
func hasSplitting(s string) bool {
	var prev, pprev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' && (prev == '\n' || (prev == '\r' && pprev == '\n')) {
			return true
		}
		pprev = prev
		prev = c
	}
	return false
}

// TxRequest builds an outgoing request message.
type TxRequest struct {
	Method  string
	URI     string
	Major   byte
	Minor   byte
	headers txHeaders
}

// NewTxRequest returns a TxRequest for method/uri using HTTP/1.1.
func NewTxRequest(method, uri string) *TxRequest {
	return &TxRequest{Method: method, URI: uri, Major: '1', Minor: '1'}
}

// AddHeader appends a "name: value" line.
func (tx *TxRequest) AddHeader(name, value string) {
	tx.headers.add(name, value)
}

// IsValid reports whether the accumulated header lines are free of
// embedded response-splitting boundaries.
func (tx *TxRequest) IsValid() bool {
	return !hasSplitting(tx.headers.join())
}

// Message renders the complete request-line + headers + blank line.
// Content-Length is auto-inserted for a body of contentLength > 0 bytes
// iff neither Content-Length nor Transfer-Encoding has already been added
// via AddHeader (spec §4.10's auto-insert rule).
func (tx *TxRequest) Message(contentLength int64) (string, error) {
	if !tx.IsValid() {
		return "", ErrResponseSplitting
	}
	var sb strings.Builder
	sb.WriteString(tx.Method)
	sb.WriteByte(' ')
	sb.WriteString(tx.URI)
	sb.WriteString(" HTTP/")
	sb.WriteByte(tx.Major)
	sb.WriteByte('.')
	sb.WriteByte(tx.Minor)
	sb.WriteString(crlf)
	if contentLength > 0 && !tx.headers.has(HeaderContentLength) && !tx.headers.has(HeaderTransferEncoding) {
		sb.WriteString(ContentLengthHeader(contentLength))
	}
	sb.WriteString(tx.headers.join())
	sb.WriteString(crlf)
	return sb.String(), nil
}

// TxResponse builds an outgoing response message.
type TxResponse struct {
	Status  int
	Reason  string
	Major   byte
	Minor   byte
	headers txHeaders
}

// NewTxResponse returns a TxResponse for the given status/reason using
// HTTP/1.1.
func NewTxResponse(status int, reason string) *TxResponse {
	return &TxResponse{Status: status, Reason: reason, Major: '1', Minor: '1'}
}

// AddHeader appends a "name: value" line.
func (tx *TxResponse) AddHeader(name, value string) {
	tx.headers.add(name, value)
}

// IsValid reports whether the accumulated header lines are free of
// embedded response-splitting boundaries.
func (tx *TxResponse) IsValid() bool {
	return !hasSplitting(tx.headers.join())
}

// statusPermitsBody reports whether status is one that the emitter will
// auto-insert Content-Length for (spec §4.10): status >= 200 and not one
// of the bodyless 204/304 statuses.
func statusPermitsBody(status int) bool {
	return status >= 200 && status != 204 && status != 304
}

// Message renders the complete status-line + Date + Server + headers +
// blank line. Content-Length is auto-inserted iff neither Content-Length
// nor Transfer-Encoding has already been added via AddHeader and the
// status code permits a body (spec §4.10); contentLength < 0 always
// suppresses it (for a chunked response, which should instead have
// called AddHeader with ChunkedEncodingHeader beforehand).
func (tx *TxResponse) Message(contentLength int64) (string, error) {
	if !tx.IsValid() {
		return "", ErrResponseSplitting
	}
	var sb strings.Builder
	sb.WriteString("HTTP/")
	sb.WriteByte(tx.Major)
	sb.WriteByte('.')
	sb.WriteByte(tx.Minor)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(tx.Status))
	sb.WriteByte(' ')
	sb.WriteString(tx.Reason)
	sb.WriteString(crlf)
	sb.WriteString(DateHeader())
	sb.WriteString(ServerHeader())
	if contentLength >= 0 && statusPermitsBody(tx.Status) &&
		!tx.headers.has(HeaderContentLength) && !tx.headers.has(HeaderTransferEncoding) {
		sb.WriteString(ContentLengthHeader(contentLength))
	}
	sb.WriteString(tx.headers.join())
	sb.WriteString(crlf)
	return sb.String(), nil
}

// Chunk renders one chunk: its hex size line, payload, and trailing CRLF.
func Chunk(payload []byte) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(int64(len(payload)), 16))
	sb.WriteString(crlf)
	sb.Write(payload)
	sb.WriteString(crlf)
	return sb.String()
}

// LastChunk renders the terminal zero-size chunk, an optional chunk
// extension, and an optional trailer header string (as produced by
// HeaderBlock.ToString), followed by the final blank line.
func LastChunk(extension, trailerString string) string {
	var sb strings.Builder
	sb.WriteByte('0')
	if extension != "" {
		sb.WriteByte(';')
		sb.WriteString(extension)
	}
	sb.WriteString(crlf)
	sb.WriteString(trailerString)
	sb.WriteString(crlf)
	return sb.String()
}
