package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Transfers
	TransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_transfers_total",
			Help: "Transfers that reached a state.",
		},
		[]string{"state"}, // created|confirmed
	)
	TransferFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_transfer_failures_total",
			Help: "Failed transfer operations by error kind.",
		},
		[]string{"op", "kind"},
	)
	PointsTransferred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "points_transferred_total",
			Help: "Points moved by confirmed transfers.",
		},
	)

	registerOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry; safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPLatency, TransfersTotal, TransferFailures, PointsTransferred)
	})
}
