package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"mercator-hq/rotator/pkg/config"
	"mercator-hq/rotator/pkg/telemetry/tracing"
)

// Outbound is the request sent to each instance in turn. The body is
// buffered once so that every attempt replays identical bytes.
type Outbound struct {
	Method    string
	Path      string
	RawQuery  string
	Header    http.Header
	Body      []byte
	RequestID string
}

// NewOutbound captures the inbound request for replay. The headers are
// sanitized against credentialHeader; body must already be fully read.
func NewOutbound(r *http.Request, body []byte, requestID, credentialHeader string) *Outbound {
	return &Outbound{
		Method:    r.Method,
		Path:      r.URL.EscapedPath(),
		RawQuery:  r.URL.RawQuery,
		Header:    SanitizeRequestHeaders(r.Header, credentialHeader),
		Body:      body,
		RequestID: requestID,
	}
}

// URL returns the target URL on the given instance endpoint.
func (o *Outbound) URL(endpoint string) string {
	u := endpoint + o.Path
	if o.RawQuery != "" {
		u += "?" + o.RawQuery
	}
	return u
}

// Forwarder sends outbound requests to instances and classifies responses.
// It is safe for concurrent use.
type Forwarder struct {
	// client has no overall timeout so streamed bodies are never cut off;
	// connect and header phases are bounded by the transport.
	client *http.Client

	// headerName is the header the instance credential is sent in
	headerName string

	// maxPreview caps the body bytes captured from failed attempts
	maxPreview int

	// previewTimeout bounds the body read of failed attempts; the transport
	// stops timing once headers arrive.
	previewTimeout time.Duration

	logger *slog.Logger
	tracer *tracing.Tracer
}

// NewForwarder creates a forwarder with a pooled transport built from cfg.
func NewForwarder(cfg config.UpstreamConfig, headerName string, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.HandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		// Relay bytes exactly as the instance encoded them
		DisableCompression: true,
		ForceAttemptHTTP2:  true,
	}

	client := &http.Client{
		Transport: transport,
		// Redirects are relayed to the caller, not followed
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Forwarder{
		client:         client,
		headerName:     headerName,
		maxPreview:     cfg.MaxPreviewBytes,
		previewTimeout: cfg.PreviewTimeout,
		logger:         logger,
		tracer:         tracing.Noop(),
	}
}

// WithTracer makes outbound requests carry the trace context of the
// attempt they belong to.
func (f *Forwarder) WithTracer(t *tracing.Tracer) *Forwarder {
	if t != nil {
		f.tracer = t
	}
	return f
}

// Try sends out to one instance and classifies the result.
//
// The response is returned only for OutcomeSuccess and OutcomeTerminalStatus;
// its body is open and the caller must close it. For retryable statuses the
// body preview is captured into the attempt and the body closed here.
// ctx should derive from the inbound request so a client disconnect aborts
// the upstream call.
func (f *Forwarder) Try(ctx context.Context, idx int, inst config.Instance, out *Outbound) (*http.Response, Attempt) {
	attempt := Attempt{Index: idx}
	start := time.Now()

	// reqCtx lives until the response body is closed, so the preview read
	// can be abandoned without touching the caller's context.
	reqCtx, cancel := context.WithCancel(ctx)

	req, err := f.newRequest(reqCtx, inst, out)
	if err != nil {
		cancel()
		attempt.Outcome = OutcomeTransportError
		attempt.Error = err.Error()
		return nil, finish(&attempt, start)
	}

	f.logger.DebugContext(ctx, "sending request to instance",
		"instance", idx,
		"endpoint", inst.Endpoint,
		"method", out.Method,
		"path", out.Path,
	)

	resp, err := f.client.Do(req)
	if err != nil {
		cancel()
		attempt.Outcome = OutcomeTransportError
		attempt.Error = err.Error()
		attempt.Timeout = IsTimeout(err)
		return nil, finish(&attempt, start)
	}

	attempt.Status = resp.StatusCode
	attempt.Outcome = Classify(resp.StatusCode)

	if attempt.Outcome != OutcomeRetryableStatus {
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, finish(&attempt, start)
	}

	attempt.Headers = SnapshotHeaders(resp.Header)

	var stalled bool
	if f.previewTimeout > 0 {
		timer := time.AfterFunc(f.previewTimeout, cancel)
		attempt.BodyPreview, attempt.Truncated, err = readPreview(resp.Body, f.maxPreview)
		stalled = !timer.Stop()
	} else {
		attempt.BodyPreview, attempt.Truncated, err = readPreview(resp.Body, f.maxPreview)
	}
	resp.Body.Close()
	cancel()

	if stalled && ctx.Err() == nil {
		attempt.Truncated = true
		f.logger.WarnContext(ctx, "instance stalled while sending error body",
			"instance", idx,
			"status", attempt.Status,
			"preview_timeout", f.previewTimeout,
		)
	} else if err != nil {
		f.logger.DebugContext(ctx, "failed to read error body preview",
			"instance", idx,
			"error", err,
		)
	}

	return nil, finish(&attempt, start)
}

// Close releases idle upstream connections.
func (f *Forwarder) Close() {
	f.client.CloseIdleConnections()
}

func (f *Forwarder) newRequest(ctx context.Context, inst config.Instance, out *Outbound) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, out.Method, out.URL(inst.Endpoint), bytes.NewReader(out.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = out.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set(f.headerName, inst.Credential)
	if out.RequestID != "" {
		req.Header.Set(HeaderRequestID, out.RequestID)
	}
	f.tracer.Inject(ctx, req.Header)
	return req, nil
}

// cancelOnClose releases the attempt context when the relayed body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// finish stamps elapsed time before the attempt is returned by value.
func finish(a *Attempt, start time.Time) Attempt {
	a.Elapsed = time.Since(start)
	a.ElapsedMS = a.Elapsed.Milliseconds()
	return *a
}
