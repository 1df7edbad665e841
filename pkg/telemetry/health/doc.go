// Package health provides liveness and readiness checks for rotator.
//
// The checks are served on the admin listener:
//
//   - GET /health/live: the process is running (always 200)
//   - GET /health/ready: every registered check passed (200) or not (503)
//   - GET /version: build information
//
// Readiness checks run concurrently, each bounded by the checker timeout:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("instances", func(ctx context.Context) error {
//	    if set.Len() == 0 {
//	        return errors.New("no instances loaded")
//	    }
//	    return nil
//	})
//	checker.Register(adminMux, version, commit, buildTime)
package health
