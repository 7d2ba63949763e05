package viahttp

import (
	"strconv"
	"time"
)

// Header-field catalog (spec §4.2): canonical and lowercase names for the
// RFC 7230-era standard header set, plus formatters for outgoing header
// lines. Grounded on the teacher's constants.go (which special-cases six
// headers as byte slices for its zero-alloc parser); the catalog here
// carries the full set spec §4.2 enumerates because the header-block
// parser (headers.go) needs every one of them addressable by name for its
// convenience queries and the encoders need every one addressable for
// formatting.
const (
	HeaderAccept             = "Accept"
	HeaderAcceptCharset      = "Accept-Charset"
	HeaderAcceptEncoding     = "Accept-Encoding"
	HeaderAcceptLanguage     = "Accept-Language"
	HeaderAcceptRanges       = "Accept-Ranges"
	HeaderAge                = "Age"
	HeaderAllow              = "Allow"
	HeaderAuthorization      = "Authorization"
	HeaderCacheControl       = "Cache-Control"
	HeaderConnection         = "Connection"
	HeaderContentEncoding    = "Content-Encoding"
	HeaderContentLanguage    = "Content-Language"
	HeaderContentLength      = "Content-Length"
	HeaderContentLocation    = "Content-Location"
	HeaderContentMD5         = "Content-MD5"
	HeaderContentRange       = "Content-Range"
	HeaderContentType        = "Content-Type"
	HeaderCookie             = "Cookie"
	HeaderDate               = "Date"
	HeaderETag               = "ETag"
	HeaderExpect             = "Expect"
	HeaderExpires            = "Expires"
	HeaderFrom               = "From"
	HeaderHost               = "Host"
	HeaderIfMatch            = "If-Match"
	HeaderIfModifiedSince    = "If-Modified-Since"
	HeaderIfNoneMatch        = "If-None-Match"
	HeaderIfRange            = "If-Range"
	HeaderIfUnmodifiedSince  = "If-Unmodified-Since"
	HeaderLastModified       = "Last-Modified"
	HeaderLocation           = "Location"
	HeaderMaxForwards        = "Max-Forwards"
	HeaderPragma             = "Pragma"
	HeaderProxyAuthenticate  = "Proxy-Authenticate"
	HeaderProxyAuthorization = "Proxy-Authorization"
	HeaderRange              = "Range"
	HeaderReferer            = "Referer"
	HeaderRetryAfter         = "Retry-After"
	HeaderServer             = "Server"
	HeaderSetCookie          = "Set-Cookie"
	HeaderTE                 = "TE"
	HeaderTrailer            = "Trailer"
	HeaderTransferEncoding   = "Transfer-Encoding"
	HeaderUpgrade            = "Upgrade"
	HeaderUserAgent          = "User-Agent"
	HeaderVary               = "Vary"
	HeaderVia                = "Via"
	HeaderWWWAuthenticate    = "WWW-Authenticate"
	HeaderWarning            = "Warning"
)

// ServerIdentifier is the Server header value the helpers emit. Implementers
// embedding this library may substitute their own (spec §4.2).
const ServerIdentifier = "Via-httplib"

const crlf = "\r\n"

// ToHeaderLine formats a single "Name: value\r\n" field line.
func ToHeaderLine(name, value string) string {
	return name + ": " + value + crlf
}

// dateFormat is RFC 1123 with a literal GMT zone, per spec §4.2.
const dateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// DateHeader formats the current UTC time as a Date header line.
func DateHeader() string {
	return ToHeaderLine(HeaderDate, time.Now().UTC().Format(dateFormat))
}

// ServerHeader formats the Server header line using ServerIdentifier.
func ServerHeader() string {
	return ToHeaderLine(HeaderServer, ServerIdentifier)
}

// ContentLengthHeader formats a Content-Length header line for n bytes.
func ContentLengthHeader(n int64) string {
	return ToHeaderLine(HeaderContentLength, strconv.FormatInt(n, 10))
}

// ChunkedEncodingHeader formats the Transfer-Encoding header line announcing
// chunked framing.
func ChunkedEncodingHeader() string {
	return ToHeaderLine(HeaderTransferEncoding, "Chunked")
}
