package loopback

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// chunkReader yields its data in caller-controlled slices, simulating a
// socket that delivers a request across several reads.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	chunk := r.chunks[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		r.chunks[0] = chunk[n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func splitIntoChunks(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func TestContentLength(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		n, ok := contentLength([]byte("POST /callback HTTP/1.1\r\nContent-Length: 42\r\nHost: x"))
		require.True(t, ok)
		assert.Equal(t, 42, n)
	})

	t.Run("case insensitive", func(t *testing.T) {
		n, ok := contentLength([]byte("POST / HTTP/1.1\r\ncontent-LENGTH:7"))
		require.True(t, ok)
		assert.Equal(t, 7, n)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := contentLength([]byte("GET / HTTP/1.1\r\nHost: localhost"))
		assert.False(t, ok)
	})

	t.Run("malformed value means no body", func(t *testing.T) {
		_, ok := contentLength([]byte("POST / HTTP/1.1\r\nContent-Length: banana"))
		assert.False(t, ok)
	})

	t.Run("negative value means no body", func(t *testing.T) {
		_, ok := contentLength([]byte("POST / HTTP/1.1\r\nContent-Length: -5"))
		assert.False(t, ok)
	})
}

func TestReadRequest(t *testing.T) {
	t.Run("stops at header boundary without content length", func(t *testing.T) {
		raw := "GET /login HTTP/1.1\r\nHost: 127.0.0.1\r\n\r\n"
		got := readRequest(strings.NewReader(raw), DefaultMaxRequestBytes)
		assert.Equal(t, raw, string(got))
	})

	t.Run("waits for declared body across chunked reads", func(t *testing.T) {
		body := `{"uid":"abc"}`
		raw := fmt.Sprintf("POST /callback HTTP/1.1\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
		r := &chunkReader{chunks: splitIntoChunks([]byte(raw), 3)}
		got := readRequest(r, DefaultMaxRequestBytes)
		assert.Equal(t, raw, string(got))
	})

	t.Run("malformed content length stops at header boundary", func(t *testing.T) {
		raw := "POST /callback HTTP/1.1\r\nContent-Length: NaN\r\n\r\n"
		got := readRequest(strings.NewReader(raw+"trailing"), DefaultMaxRequestBytes)
		// The trailing bytes may or may not arrive in the same chunk; the
		// reader must stop no later than the header boundary read.
		assert.True(t, strings.HasPrefix(string(got), raw))
	})

	t.Run("peer close ends read with partial request", func(t *testing.T) {
		raw := "POST /callback HTTP/1.1\r\nContent-Length: 100\r\n\r\nshort"
		got := readRequest(strings.NewReader(raw), DefaultMaxRequestBytes)
		assert.Equal(t, raw, string(got))
	})

	t.Run("stops at safety ceiling", func(t *testing.T) {
		huge := strings.Repeat("A", 10*1024)
		got := readRequest(strings.NewReader(huge), 1024)
		assert.LessOrEqual(t, len(got), 1024+readChunkSize)
	})
}

func TestParseRequest(t *testing.T) {
	t.Run("method path and body", func(t *testing.T) {
		raw := []byte("POST /callback HTTP/1.1\r\nContent-Type: application/json\r\n\r\n{\"uid\":\"abc\"}")
		req := parseRequest(raw)
		assert.Equal(t, "POST", req.method)
		assert.Equal(t, "/callback", req.path)
		assert.Equal(t, `{"uid":"abc"}`, string(req.body))
	})

	t.Run("binary body survives byte for byte", func(t *testing.T) {
		body := []byte{0xff, 0xfe, 0x00, 0x7f, 0xc3, 0xa9}
		raw := append([]byte("POST /callback HTTP/1.1\r\n\r\n"), body...)
		req := parseRequest(raw)
		assert.True(t, bytes.Equal(body, req.body))
	})

	t.Run("garbage degrades to default route", func(t *testing.T) {
		req := parseRequest([]byte("\x00\x01nonsense"))
		assert.Empty(t, req.method)
		assert.Equal(t, "/", req.path)
	})

	t.Run("empty request", func(t *testing.T) {
		req := parseRequest(nil)
		assert.Empty(t, req.method)
		assert.Equal(t, "/", req.path)
		assert.Empty(t, req.body)
	})
}

// TestReadRequestRoundTrip checks that for any body and any split of the
// stream into reads, the framer collects exactly the declared body.
func TestReadRequestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.SliceOfN(rapid.Byte(), 0, 2048).Draw(t, "body")
		chunkSize := rapid.IntRange(1, 512).Draw(t, "chunkSize")

		raw := append([]byte(fmt.Sprintf(
			"POST /callback HTTP/1.1\r\nHost: 127.0.0.1\r\nContent-Length: %d\r\n\r\n", len(body))), body...)

		r := &chunkReader{chunks: splitIntoChunks(raw, chunkSize)}
		got := readRequest(r, DefaultMaxRequestBytes)
		req := parseRequest(got)

		if req.method != "POST" || req.path != "/callback" {
			t.Fatalf("request line lost: %q %q", req.method, req.path)
		}
		if !bytes.Equal(req.body, body) {
			t.Fatalf("body mismatch: want %d bytes, got %d", len(body), len(req.body))
		}
	})
}
