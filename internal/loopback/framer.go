package loopback

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// headerSeparator terminates the HTTP header block. Everything after it is
// body and must be treated as opaque bytes.
var headerSeparator = []byte("\r\n\r\n")

// readRequest reads one HTTP request from r into a single byte buffer.
//
// The reader accumulates fixed-size chunks until the header/body separator is
// seen. If the headers declare a parseable Content-Length, reading continues
// until that many body bytes have arrived; otherwise the request is considered
// complete at the header boundary. A malformed Content-Length value is treated
// as "no body declared". Reads stop unconditionally once maxBytes have been
// accumulated, and any read error or EOF ends the read phase with whatever has
// been collected so far.
func readRequest(r io.Reader, maxBytes int) []byte {
	var buf []byte
	chunk := make([]byte, readChunkSize)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)

			if headerEnd := bytes.Index(buf, headerSeparator); headerEnd >= 0 {
				cl, ok := contentLength(buf[:headerEnd])
				if !ok {
					return buf
				}
				bodyStart := headerEnd + len(headerSeparator)
				if len(buf) >= bodyStart+cl {
					return buf
				}
			}

			if len(buf) > maxBytes {
				return buf
			}
		}
		if err != nil || n == 0 {
			return buf
		}
	}
}

// contentLength scans the raw header block for a Content-Length header,
// case-insensitively. The second return is false when no parseable value is
// present.
func contentLength(headers []byte) (int, bool) {
	for _, line := range strings.Split(string(headers), "\r\n") {
		if !strings.HasPrefix(strings.ToLower(line), "content-length:") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// request is the minimally parsed form of one HTTP request: just enough for
// routing. The body is kept as raw bytes and never re-encoded.
type request struct {
	method string
	path   string
	body   []byte
}

// parseRequest extracts method, path and body from a raw request buffer.
// Malformed requests degrade to empty tokens so that routing falls through to
// the default branch instead of failing the connection.
func parseRequest(raw []byte) request {
	req := request{path: "/"}

	headerEnd := bytes.Index(raw, headerSeparator)
	if headerEnd < 0 {
		headerEnd = len(raw)
	} else {
		req.body = raw[headerEnd+len(headerSeparator):]
	}

	// The request line is header-safe text; the body may not be.
	firstLine, _, _ := strings.Cut(string(raw[:headerEnd]), "\r\n")
	fields := strings.Fields(firstLine)
	if len(fields) > 0 {
		req.method = fields[0]
	}
	if len(fields) > 1 {
		req.path = fields[1]
	}
	return req
}
