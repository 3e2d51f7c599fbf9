package loopback

import (
	"fmt"
	"net"
	"strings"
)

// HTTP status lines used by the listener.
const (
	statusOK        = "200 OK"
	statusNoContent = "204 No Content"
)

// Content types. charset=utf-8 is appended to every response so browsers
// never have to guess.
const (
	contentTypeHTML  = "text/html"
	contentTypeJSON  = "application/json"
	contentTypePlain = "text/plain"
)

// writeResponse writes one complete HTTP response and flushes it to the peer.
// Content-Length is the byte length of body, not its rune count. Every
// response carries permissive CORS headers so the hosted login page can
// complete its cross-origin POST, and Connection: close because the listener
// never keeps connections alive.
func writeResponse(conn net.Conn, status, contentType string, body []byte) error {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %s\r\n", status)
	fmt.Fprintf(&b, "Content-Type: %s; charset=utf-8\r\n", contentType)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("Connection: close\r\n")
	b.WriteString("Access-Control-Allow-Origin: *\r\n")
	b.WriteString("Access-Control-Allow-Methods: POST, GET, OPTIONS\r\n")
	b.WriteString("Access-Control-Allow-Headers: Content-Type\r\n")
	b.WriteString("\r\n")

	if _, err := conn.Write([]byte(b.String())); err != nil {
		return fmt.Errorf("write response headers: %w", err)
	}
	if len(body) > 0 {
		if _, err := conn.Write(body); err != nil {
			return fmt.Errorf("write response body: %w", err)
		}
	}
	return nil
}
