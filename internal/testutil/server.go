package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
)

// StreamHandler writes the given frames as one flushed chunk each and then
// closes the response. Frames may be pre-split to exercise arbitrary chunk
// boundaries.
func StreamHandler(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, _ := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, chunk := range chunks {
			_, _ = w.Write([]byte(chunk))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// SplitEvery cuts s into chunks of at most n bytes, so a frame can be split
// at any byte boundary, including inside string literals.
func SplitEvery(s string, n int) []string {
	if n <= 0 {
		return []string{s}
	}
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}

// CountingServer wraps an httptest server and counts requests per path prefix.
type CountingServer struct {
	*httptest.Server
	hits atomic.Int64
}

// NewCountingServer starts a server delegating to handler while counting
// every request.
func NewCountingServer(handler http.Handler) *CountingServer {
	cs := &CountingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	return cs
}

// Hits returns the number of requests observed.
func (c *CountingServer) Hits() int64 { return c.hits.Load() }

// JoinFrames concatenates frames into one stream body.
func JoinFrames(frames ...string) string { return strings.Join(frames, "") }
