package mempool

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusMempoolSize     prometheus.Gauge
	prometheusMempoolAccepted prometheus.Counter
	prometheusMempoolRejected *prometheus.CounterVec
	prometheusMempoolEvicted  prometheus.Counter
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusMempoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ledgersim",
			Subsystem: "mempool",
			Name:      "size",
			Help:      "Number of transactions in the mempool",
		},
	)

	prometheusMempoolAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "mempool",
			Name:      "accepted",
			Help:      "Number of transactions accepted into the mempool",
		},
	)

	prometheusMempoolRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "mempool",
			Name:      "rejected",
			Help:      "Number of transactions rejected by the mempool, by reason",
		},
		[]string{"reason"},
	)

	prometheusMempoolEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "mempool",
			Name:      "evicted",
			Help:      "Number of transactions evicted to make room for higher fee transactions",
		},
	)
}
