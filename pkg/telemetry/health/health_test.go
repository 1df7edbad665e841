package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{
			name:            "default timeout",
			timeout:         0,
			expectedTimeout: 5 * time.Second,
		},
		{
			name:            "custom timeout",
			timeout:         10 * time.Second,
			expectedTimeout: 10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)

			if checker == nil {
				t.Fatal("expected non-nil checker")
			}
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.ListChecks()) != 0 {
				t.Errorf("expected 0 checks, got %d", len(checker.ListChecks()))
			}
		})
	}
}

func TestListChecks(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("rotation", func(context.Context) error { return nil })
	checker.RegisterCheck("instances", func(context.Context) error { return nil })
	checker.RegisterCheck("instances", func(context.Context) error { return nil })

	want := []string{"instances", "rotation"}
	if got := checker.ListChecks(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		unhealthy  []string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"instances": func(context.Context) error { return nil },
				"rotation":  func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"instances": func(context.Context) error { return nil },
				"rotation":  func(context.Context) error { return errors.New("pointer out of range") },
			},
			wantStatus: StatusDegraded,
			unhealthy:  []string{"rotation"},
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(10 * time.Millisecond)
					return nil
				},
			},
			wantStatus: StatusDegraded,
			unhealthy:  []string{"slow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(50 * time.Millisecond)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, status.Status)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("expected %d results, got %d", len(tt.checks), len(status.Checks))
			}
			for _, name := range tt.unhealthy {
				if status.Checks[name].Status != StatusUnhealthy {
					t.Errorf("expected %s unhealthy, got %+v", name, status.Checks[name])
				}
			}
		})
	}
}

func TestCheckReadiness_RunsConcurrently(t *testing.T) {
	checker := New(time.Second)
	var running, peak atomic.Int32

	for _, name := range []string{"a", "b", "c"} {
		checker.RegisterCheck(name, func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	}

	checker.CheckReadiness(context.Background())

	if peak.Load() < 2 {
		t.Errorf("expected checks to overlap, peak concurrency %d", peak.Load())
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, PathLive, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Status != StatusOK {
		t.Errorf("expected ok, got %q", status.Status)
	}
}

func TestLivenessHandler_MethodNotAllowed(t *testing.T) {
	checker := New(time.Second)

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodPost, PathLive, nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	checker := New(time.Second)
	healthy := true
	checker.RegisterCheck("instances", func(context.Context) error {
		if !healthy {
			return errors.New("no instances")
		}
		return nil
	})

	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, PathReady, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 when ready, got %d", rec.Code)
	}

	healthy = false
	rec = httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, PathReady, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when degraded, got %d", rec.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Checks["instances"].Message != "no instances" {
		t.Errorf("unexpected check result %+v", status.Checks["instances"])
	}
}

func TestRegister(t *testing.T) {
	checker := New(time.Second)
	mux := http.NewServeMux()
	checker.Register(mux, "1.2.3", "abc123", "2025-11-20")

	for _, path := range []string{PathLive, PathReady, PathVersion} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathVersion, nil))
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode version: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Errorf("unexpected version info %+v", info)
	}
	if info.GoVersion == "" {
		t.Error("expected go version")
	}
}
