// Package loopback implements the self-terminating loopback HTTP listener
// that brokers the browser-based sign-in flow. It binds an ephemeral port on
// 127.0.0.1, serves the hosted login page to the external browser, accepts the
// credential POST from it and forwards the payload to the host application,
// then shuts itself down.
//
// This is deliberately not built on net/http: the listener handles exactly one
// short-lived exchange per session, needs byte-exact control over framing and
// response composition, and must terminate deterministically without leaking a
// socket or a goroutine. A routing table, TLS, keep-alive and chunked transfer
// encoding are all out of scope.
package loopback

import (
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/aitodo/authbridge/internal/events"
)

const (
	// DefaultMaxAccepts bounds the accept loop so an abandoned session (user
	// closed the browser tab) cannot leak a listening socket forever.
	DefaultMaxAccepts = 20

	// DefaultMaxRequestBytes is the hard ceiling on one accumulated request.
	DefaultMaxRequestBytes = 64 * 1024

	readChunkSize = 4096

	callbackPath = "/callback"
	faviconPath  = "/favicon.ico"

	// callbackAck is the fixed acknowledgement body for a successful
	// credential POST.
	callbackAck = `{"ok":true}`
)

// Server is a single-use loopback callback listener. Create one per sign-in
// attempt with New and arm it with Start; it disposes of itself.
type Server struct {
	page            []byte
	notifier        events.Notifier
	maxAccepts      int
	maxRequestBytes int
	logger          *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxAccepts overrides the accepted-connection budget.
func WithMaxAccepts(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxAccepts = n
		}
	}
}

// WithMaxRequestBytes overrides the request size ceiling.
func WithMaxRequestBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRequestBytes = n
		}
	}
}

// WithLogger attaches a logger. Without it the server is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger.Named("loopback")
	}
}

// New creates a listener that serves page on unmatched GETs and forwards the
// callback payload to notifier.
func New(page []byte, notifier events.Notifier, opts ...Option) *Server {
	s := &Server{
		page:            page,
		notifier:        notifier,
		maxAccepts:      DefaultMaxAccepts,
		maxRequestBytes: DefaultMaxRequestBytes,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds an ephemeral port on the loopback interface and returns it. The
// accept loop runs on a background goroutine; the port is bound before Start
// returns, so the caller may immediately render a URL that uses it. There is
// no stop API: the loop terminates after the callback is received or after
// maxAccepts connections, whichever comes first.
func (s *Server) Start() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to bind loopback listener: %w", err)
	}

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		ln.Close()
		return 0, fmt.Errorf("unexpected listener address type %T", ln.Addr())
	}
	port := addr.Port

	s.logger.Info("Callback listener started",
		zap.Int("port", port),
		zap.Int("max_accepts", s.maxAccepts))

	go s.acceptLoop(ln, port)

	return port, nil
}

// acceptLoop serves connections sequentially until the callback arrives or
// the accept budget is exhausted. Sequential handling is deliberate: at most
// one legitimate callback is expected per session, so there is no shared
// state to synchronize.
func (s *Server) acceptLoop(ln net.Listener, port int) {
	defer ln.Close()

	for i := 0; i < s.maxAccepts; i++ {
		conn, err := ln.Accept()
		if err != nil {
			// A single failed accept must not kill the loop; it just
			// consumes one unit of the budget.
			s.logger.Debug("Accept failed, skipping connection",
				zap.Int("attempt", i+1),
				zap.Error(err))
			continue
		}

		done := s.handleConn(conn)
		conn.Close()

		if done {
			s.logger.Info("Callback received, listener shutting down",
				zap.Int("port", port),
				zap.Int("connections_handled", i+1))
			return
		}
	}

	s.logger.Warn("Accept budget exhausted without callback, listener shutting down",
		zap.Int("port", port),
		zap.Int("max_accepts", s.maxAccepts))
}

// handleConn reads and answers exactly one request. It reports true when the
// request was the successful credential callback, which terminates the loop.
func (s *Server) handleConn(conn net.Conn) bool {
	raw := readRequest(conn, s.maxRequestBytes)
	req := parseRequest(raw)

	s.logger.Debug("Request received",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("bytes", len(raw)))

	switch {
	case req.method == "OPTIONS":
		// CORS preflight for the upcoming POST.
		s.writeOrLog(conn, statusNoContent, contentTypePlain, nil)
		return false

	case req.method == "POST" && strings.HasPrefix(req.path, callbackPath):
		// The payload is opaque: forwarded byte-for-byte, never parsed or
		// validated here. The acknowledgement goes out before the notification
		// so the browser's POST always completes.
		s.writeOrLog(conn, statusOK, contentTypeJSON, []byte(callbackAck))
		s.notifier.Notify(events.CallbackEvent, string(req.body))
		return true

	case req.path == faviconPath:
		s.writeOrLog(conn, statusNoContent, contentTypePlain, nil)
		return false

	default:
		// Everything else, including / and /login, gets the login page.
		s.writeOrLog(conn, statusOK, contentTypeHTML, s.page)
		return false
	}
}

// writeOrLog writes a response and logs failures instead of propagating them;
// a broken peer connection is not actionable here.
func (s *Server) writeOrLog(conn net.Conn, status, contentType string, body []byte) {
	if err := writeResponse(conn, status, contentType, body); err != nil {
		s.logger.Debug("Response write failed", zap.Error(err))
	}
}
