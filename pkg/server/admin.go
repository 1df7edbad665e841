package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"mercator-hq/rotator/pkg/routing"
)

// PathStats serves the routing statistics snapshot.
const PathStats = "/stats"

// StatsResponse is the body of GET /stats. Credentials are never included.
type StatsResponse struct {
	RotationPointer int                   `json:"rotation_pointer"`
	Instances       []string              `json:"instances"`
	HeaderName      string                `json:"header_name"`
	Stats           routing.StatsSnapshot `json:"stats"`
}

func newAdminMux(opts Options) *http.ServeMux {
	mux := http.NewServeMux()

	if opts.Checker != nil {
		registerChecks(opts)
		opts.Checker.Register(mux, opts.Version, opts.Commit, opts.BuildTime)
	}

	if opts.Metrics != nil && opts.Config.Metrics.Enabled {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	if opts.Stats != nil && opts.Rotation != nil && opts.Instances != nil {
		mux.HandleFunc("GET "+PathStats, func(w http.ResponseWriter, r *http.Request) {
			resp := StatsResponse{
				RotationPointer: opts.Rotation.Peek(),
				Instances:       opts.Instances.Endpoints(),
				HeaderName:      opts.Instances.HeaderName(),
				Stats:           opts.Stats.Snapshot(),
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Cache-Control", "no-store")
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				opts.Logger.Warn("failed to write stats response", "error", err)
			}
		})
	}

	return mux
}

// registerChecks adds the readiness checks for the routing state.
func registerChecks(opts Options) {
	opts.Checker.RegisterCheck("instances", func(context.Context) error {
		if opts.Instances == nil || opts.Instances.Len() == 0 {
			return routing.ErrNoInstances
		}
		return nil
	})

	opts.Checker.RegisterCheck("rotation", func(context.Context) error {
		if opts.Rotation == nil {
			return errors.New("rotation not initialized")
		}
		if p := opts.Rotation.Peek(); p < 0 || p >= opts.Rotation.Size() {
			return fmt.Errorf("rotation pointer %d out of range [0, %d)", p, opts.Rotation.Size())
		}
		return nil
	})
}
