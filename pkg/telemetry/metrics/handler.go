package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
// It is mounted on the admin listener, never on the proxy listener, where
// every path belongs to the upstream API.
//
// Example:
//
//	collector := metrics.NewCollector(cfg, nil)
//	adminMux.Handle("/metrics", collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics:   true,
			ErrorHandling:       promhttp.ContinueOnError,
			MaxRequestsInFlight: 4,
		},
	)
}
