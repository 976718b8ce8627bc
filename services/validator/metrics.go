package validator

import (
	"sync"

	"github.com/bsv-blockchain/ledgersim/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusValidatorValidated prometheus.Counter
	// rejections by error code name
	prometheusValidatorRejected *prometheus.CounterVec
	prometheusValidatorValidate prometheus.Histogram
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusValidatorValidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "validator",
			Name:      "valid_transactions",
			Help:      "Number of transactions found valid by the validator",
		},
	)

	prometheusValidatorRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "validator",
			Name:      "invalid_transactions",
			Help:      "Number of transactions rejected by the validator, by reason",
		},
		[]string{"reason"},
	)

	prometheusValidatorValidate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ledgersim",
			Subsystem: "validator",
			Name:      "transactions_validate",
			Help:      "Histogram of transaction validation",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
}
