package upstream

import (
	"io"
	"strings"
	"time"
)

// Attempt records one try against one instance. Attempts are reported to the
// client when every instance failed, so the endpoint is not recorded.
type Attempt struct {
	// Index is the instance position in the instance set.
	Index int `json:"instance_index"`

	Outcome Outcome `json:"outcome"`

	// Status is the upstream status code, 0 for transport errors.
	Status int `json:"status,omitempty"`

	// Error is the transport error text.
	Error string `json:"error,omitempty"`

	// Timeout is set when the transport error was a timeout.
	Timeout bool `json:"timeout,omitempty"`

	ElapsedMS int64 `json:"elapsed_ms"`

	// Headers holds allow-listed response headers.
	Headers map[string]string `json:"headers,omitempty"`

	// BodyPreview is the first bytes of the response body, valid UTF-8.
	BodyPreview string `json:"body_preview,omitempty"`

	// Truncated is set when the body was longer than the preview.
	Truncated bool `json:"truncated,omitempty"`

	// Elapsed is the wall time of the attempt.
	Elapsed time.Duration `json:"-"`
}

// RetryAfter returns the Retry-After header captured from the attempt.
func (a Attempt) RetryAfter() string {
	return a.Headers["Retry-After"]
}

// readPreview reads at most limit bytes of r and reports whether more
// remained. The preview is coerced to valid UTF-8.
func readPreview(r io.Reader, limit int) (string, bool, error) {
	if limit <= 0 {
		n, err := io.CopyN(io.Discard, r, 1)
		if err == io.EOF {
			err = nil
		}
		return "", n > 0, err
	}

	buf, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	truncated := len(buf) > limit
	if truncated {
		buf = buf[:limit]
	}
	return strings.ToValidUTF8(string(buf), "\uFFFD"), truncated, err
}
