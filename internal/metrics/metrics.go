// Package metrics registers the gateway's Prometheus collectors and
// exposes them at /metrics. It generalizes the teacher's logging-only
// RunMetrics ticker into a pull-based exporter, since observability stays
// ambient even where feature Non-goals narrow the rest of the surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors bundles every metric the gateway records. It is constructed
// once, process-wide, and threaded into the HTTP layer and the dispatcher.
type Collectors struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	PacketsDispatched *prometheus.CounterVec
	QueuedPacketsDrained prometheus.Histogram
}

// New registers every collector against reg and returns the bundle.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bancho_gateway",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bancho_gateway",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		PacketsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bancho_gateway",
			Name:      "packets_dispatched_total",
			Help:      "Client packets dispatched, by opcode name.",
		}, []string{"opcode"}),
		QueuedPacketsDrained: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bancho_gateway",
			Name:      "queued_packets_drained",
			Help:      "Number of queued packets drained per /v1/bancho poll.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		}),
	}
}
