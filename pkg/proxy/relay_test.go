package proxy

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestRelay(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("hello world")}
	resp := &http.Response{
		StatusCode: http.StatusCreated,
		Header: http.Header{
			"Content-Type":      {"text/plain"},
			"Connection":        {"X-Internal"},
			"X-Internal":        {"secret"},
			"Keep-Alive":        {"timeout=5"},
			"Transfer-Encoding": {"chunked"},
			"X-Request-Id":      {"upstream-id"},
			"Set-Cookie":        {"a=1", "b=2"},
		},
		Body: body,
	}

	rec := httptest.NewRecorder()
	n, err := Relay(rec, resp, "our-id")

	require.NoError(t, err)
	assert.Equal(t, int64(len("hello world")), n)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.True(t, rec.Flushed)
	assert.True(t, body.closed)

	h := rec.Header()
	assert.Equal(t, "text/plain", h.Get("Content-Type"))
	assert.Equal(t, "our-id", h.Get("X-Request-ID"))
	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("Set-Cookie"))
	for _, name := range []string{"Connection", "X-Internal", "Keep-Alive", "Transfer-Encoding"} {
		assert.Empty(t, h.Get(name), name)
	}
}

func TestRelay_ReadErrorEndsRelay(t *testing.T) {
	body := &trackingBody{Reader: &failingReader{data: "partial"}}
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: body}

	rec := httptest.NewRecorder()
	n, err := Relay(rec, resp, "id")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, int64(len("partial")), n)
	assert.Equal(t, "partial", rec.Body.String())
	assert.True(t, body.closed)
}
