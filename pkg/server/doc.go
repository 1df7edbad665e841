// Package server runs the rotator listeners.
//
// Two listeners are started:
//
//   - proxy: every method and path is handed to the failover handler,
//     wrapped in the request-id, logging and recovery middleware
//   - admin: /health/live, /health/ready, /version, /metrics and /stats
//
// Keeping the admin routes on their own address means no upstream path is
// ever shadowed by a local endpoint.
//
// The proxy listener has no write timeout so long streamed responses are
// never cut. Start blocks until its context is cancelled, then drains
// in-flight requests for up to proxy.shutdown_timeout:
//
//	srv, err := server.New(server.Options{
//	    Config:    cfg,
//	    Proxy:     handler,
//	    Instances: set,
//	    Rotation:  rotation,
//	    Stats:     handler.Stats(),
//	    Checker:   health.New(2 * time.Second),
//	    Metrics:   collector,
//	    Logger:    logger,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
package server
