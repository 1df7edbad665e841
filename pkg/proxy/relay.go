package proxy

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/rotator/pkg/upstream"
)

// relayBufferSize is the read size of one relayed chunk.
const relayBufferSize = 32 * 1024

// Relay streams resp to w: status, headers minus hop-by-hop, then the body
// chunk by chunk with a flush after each so server-sent events reach the
// caller as they are produced. X-Request-ID is always set to requestID.
//
// The upstream body is closed on return. Once the status line is written
// nothing can be retried, so a mid-stream error only ends the relay; it is
// returned together with the number of body bytes written.
func Relay(w http.ResponseWriter, resp *http.Response, requestID string) (int64, error) {
	defer resp.Body.Close()

	header := resp.Header.Clone()
	upstream.RemoveHopByHop(header)

	dst := w.Header()
	for key, values := range header {
		dst[key] = values
	}
	if requestID != "" {
		dst.Set(upstream.HeaderRequestID, requestID)
	}
	w.WriteHeader(resp.StatusCode)

	rc := http.NewResponseController(w)
	canFlush := true
	buf := make([]byte, relayBufferSize)
	var written int64

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			m, writeErr := w.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, fmt.Errorf("write to client: %w", writeErr)
			}
			if canFlush {
				if err := rc.Flush(); err != nil {
					if !errors.Is(err, http.ErrNotSupported) {
						return written, fmt.Errorf("flush to client: %w", err)
					}
					canFlush = false
				}
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read from instance: %w", readErr)
		}
	}
}
