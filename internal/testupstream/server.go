// Package testupstream provides a scriptable fake upstream instance for tests.
package testupstream

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Response defines a canned response.
type Response struct {
	StatusCode int
	Body       any
	Headers    map[string]string

	// Delay is applied before headers are written.
	Delay time.Duration

	// Block, when set, holds the response until it is closed or the
	// client goes away.
	Block <-chan struct{}

	// StreamChunks are written one by one with a flush after each.
	StreamChunks []string

	// ChunkGate, when set, is received from between chunks, letting a
	// test observe each chunk before the next is sent.
	ChunkGate <-chan struct{}
}

// Request is a recorded inbound request.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is a fake upstream instance. Every path gets the default response
// unless a path-specific one was set.
type Server struct {
	server    *httptest.Server
	fallback  Response
	responses map[string]Response
	requests  []Request
	onRequest func(*http.Request)
	mu        sync.Mutex
}

// NewServer starts a fake instance answering every request with resp.
func NewServer(resp Response) *Server {
	s := &Server{
		fallback:  resp,
		responses: make(map[string]Response),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// Status starts a fake instance answering every request with an empty body
// and the given status.
func Status(code int) *Server {
	return NewServer(Response{StatusCode: code})
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close closes the server.
func (s *Server) Close() {
	s.server.Close()
}

// SetResponse sets the response for a specific path.
func (s *Server) SetResponse(path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
}

// OnRequest registers a hook invoked when a request arrives, before the
// response is produced.
func (s *Server) OnRequest(fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = fn
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns the number of requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp, ok := s.responses[r.URL.Path]
	if !ok {
		resp = s.fallback
	}
	hook := s.onRequest
	s.mu.Unlock()

	if hook != nil {
		hook(r)
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}
	if resp.Block != nil {
		select {
		case <-resp.Block:
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if len(resp.StreamChunks) > 0 {
		s.stream(w, r, status, resp)
		return
	}

	w.WriteHeader(status)
	if resp.Body == nil {
		return
	}
	switch v := resp.Body.(type) {
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/event-stream")
	}
	w.WriteHeader(status)

	rc := http.NewResponseController(w)
	for i, chunk := range resp.StreamChunks {
		if i > 0 && resp.ChunkGate != nil {
			select {
			case <-resp.ChunkGate:
			case <-r.Context().Done():
				return
			}
		}
		_, _ = io.WriteString(w, chunk)
		_ = rc.Flush()
	}
}

// UnreachableURL returns an http URL on a port that refuses connections.
func UnreachableURL() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "http://127.0.0.1:1"
	}
	addr := l.Addr().String()
	_ = l.Close()
	return "http://" + addr
}
