package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aretw0/lattice/pkg/core"
)

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	connections prometheus.Gauge
	replayed    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lattice_requests_total",
			Help: "Transactions executed by command and result",
		}, []string{"command", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lattice_request_duration_seconds",
			Help:    "Transaction execution time including the log append for writes",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"command"}),
		connections: f.NewGauge(prometheus.GaugeOpts{
			Name: "lattice_active_connections",
			Help: "Connections currently owned by a worker",
		}),
		replayed: f.NewCounter(prometheus.CounterOpts{
			Name: "lattice_replayed_transactions_total",
			Help: "Transactions applied from the log at startup",
		}),
	}
}

// observe counts one executed transaction. err is the domain error from
// applying it, if any.
func (m *metrics) observe(cmd core.Command, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "fail"
		if !cmd.IsWrite() {
			result = "null"
		}
	}
	m.requests.WithLabelValues(cmd.String(), result).Inc()
	m.duration.WithLabelValues(cmd.String()).Observe(elapsed.Seconds())
}
