package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/rotator/pkg/config"
	"mercator-hq/rotator/pkg/routing"
	"mercator-hq/rotator/pkg/telemetry/health"
	"mercator-hq/rotator/pkg/telemetry/logging"
	"mercator-hq/rotator/pkg/telemetry/metrics"
)

type testServer struct {
	srv      *Server
	rotation *routing.Rotation
	stats    *routing.Stats
	cancel   context.CancelFunc
	done     chan error
}

func testOptions(t *testing.T, mutate func(*config.Config)) Options {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Proxy.ListenAddress = "127.0.0.1:0"
	cfg.Admin.ListenAddress = "127.0.0.1:0"
	cfg.Proxy.ShutdownTimeout = 2 * time.Second
	if mutate != nil {
		mutate(cfg)
	}

	set, err := config.NewInstanceSet(config.InstancesDocument{Instances: []config.InstanceEntry{
		{Endpoint: "https://a.example.com", APIKey: "secret-a"},
		{Endpoint: "https://b.example.com", APIKey: "secret-b"},
	}})
	require.NoError(t, err)

	rotation, err := routing.NewRotation(set.Len())
	require.NoError(t, err)

	collector := metrics.NewCollector(&cfg.Metrics, prometheus.NewRegistry())
	collector.SetInstances(set.Len())

	return Options{
		Config: cfg,
		Proxy: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = io.WriteString(w, "proxied "+r.URL.Path)
		}),
		Instances: set,
		Rotation:  rotation,
		Stats:     routing.NewStats(set.Len()),
		Checker:   health.New(time.Second),
		Metrics:   collector,
		Logger:    logging.Discard(),
		Version:   "1.2.3",
		Commit:    "abc123",
	}
}

func startServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	srv, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not become ready")
	}

	ts := &testServer{srv: srv, rotation: opts.Rotation, stats: opts.Stats, cancel: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestNew_RequiresConfigAndProxy(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{Config: config.DefaultConfig()})
	assert.Error(t, err)
}

func TestServer_ProxyListenerForwardsEveryPath(t *testing.T) {
	ts := startServer(t, testOptions(t, nil))

	for _, path := range []string{"/health/live", "/metrics", "/stats", "/v1/chat/completions"} {
		resp, body := get(t, "http://"+ts.srv.ProxyAddr()+path)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode, path)
		assert.Equal(t, "proxied "+path, string(body))
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), "middleware chain applied")
	}
}

func TestServer_AdminEndpoints(t *testing.T) {
	opts := testOptions(t, nil)
	ts := startServer(t, opts)
	admin := "http://" + ts.srv.AdminAddr()

	assert.Equal(t, []string{"instances", "rotation"}, opts.Checker.ListChecks())

	t.Run("liveness", func(t *testing.T) {
		resp, _ := get(t, admin+health.PathLive)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("readiness", func(t *testing.T) {
		resp, body := get(t, admin+health.PathReady)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var status health.HealthStatus
		require.NoError(t, json.Unmarshal(body, &status))
		assert.Contains(t, status.Checks, "instances")
		assert.Contains(t, status.Checks, "rotation")
	})

	t.Run("version", func(t *testing.T) {
		resp, body := get(t, admin+health.PathVersion)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "1.2.3")
	})

	t.Run("metrics", func(t *testing.T) {
		resp, body := get(t, admin+"/metrics")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "rotator_instances 2")
	})

	t.Run("stats", func(t *testing.T) {
		ts.rotation.AdvanceTo(1)
		ts.stats.IncrementTotal()

		resp, body := get(t, admin+PathStats)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.NotContains(t, string(body), "secret-")

		var stats StatsResponse
		require.NoError(t, json.Unmarshal(body, &stats))
		assert.Equal(t, 1, stats.RotationPointer)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, stats.Instances)
		assert.Equal(t, config.DefaultHeaderName, stats.HeaderName)
		assert.Equal(t, int64(1), stats.Stats.TotalRequests)
	})
}

func TestServer_MetricsDisabled(t *testing.T) {
	ts := startServer(t, testOptions(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = false
	}))

	resp, _ := get(t, "http://"+ts.srv.AdminAddr()+"/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_AdminDisabled(t *testing.T) {
	ts := startServer(t, testOptions(t, func(cfg *config.Config) {
		cfg.Admin.Enabled = false
	}))

	assert.Empty(t, ts.srv.AdminAddr())
	assert.NotEmpty(t, ts.srv.ProxyAddr())
}

func TestServer_GracefulShutdown(t *testing.T) {
	ts := startServer(t, testOptions(t, nil))
	require.True(t, ts.srv.IsRunning())

	ts.cancel()

	select {
	case err := <-ts.done:
		assert.NoError(t, err)
		ts.done <- nil // let cleanup drain
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, ts.srv.IsRunning())
}

func TestServer_StartTwice(t *testing.T) {
	ts := startServer(t, testOptions(t, nil))

	err := ts.srv.Start(context.Background())
	assert.Error(t, err)
}

func TestServer_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	opts := testOptions(t, func(cfg *config.Config) {
		cfg.Proxy.ListenAddress = ln.Addr().String()
	})
	srv, err := New(opts)
	require.NoError(t, err)

	err = srv.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, srv.IsRunning())
}
