// Package proxy implements the failover handler of rotator.
//
// Every inbound request, whatever its method or path, is tried against the
// configured instances one at a time. The order is fixed per request from a
// single read of the shared rotation pointer:
//
//	start := rotation.Start()
//	order := routing.AttemptOrder(start, n) // start, start+1, ... mod n
//
// Each attempt ends in one of four outcomes (see upstream.Classify):
//
//   - success: the response is streamed back by Relay and the pointer moves
//     to the instance after the one that answered
//   - terminal status (a 4xx other than 401, 403, 404 and 429): the response
//     is relayed unchanged and the pointer is not moved
//   - retryable status or transport error: the next instance is tried
//
// When every instance failed, an AggregateFailure is written: a JSON body
// listing each attempt (status, error, header snapshot, body preview) with a
// status code derived by AggregateStatus. The pointer then moves one past the
// request's starting instance.
//
// The inbound body is buffered once, bounded by MaxRequestBodyBytes, and
// replayed byte for byte to each attempted instance. A client that goes
// away mid-loop stops the loop; nothing is written and the pointer is left
// alone.
//
// # Basic Usage
//
//	h, err := proxy.NewHandler(proxy.Options{
//	    Instances: set,
//	    Rotation:  rotation,
//	    Forwarder: upstream.NewForwarder(cfg.Upstream, set.HeaderName(), logger),
//	    Metrics:   collector,
//	    Tracer:    tracer,
//	    Logger:    logger,
//	    MaxRequestBodyBytes: cfg.Proxy.MaxRequestBodyBytes,
//	})
//	if err != nil {
//	    return err
//	}
//	srv := &http.Server{Handler: middleware.Chain(h, logger, tracer)}
package proxy
