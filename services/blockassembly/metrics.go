package blockassembly

import (
	"sync"

	"github.com/bsv-blockchain/ledgersim/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBlockAssemblerBlocks    prometheus.Counter
	prometheusBlockAssemblerRollbacks prometheus.Counter
	prometheusBlockAssemblerSkipped   prometheus.Counter
	// in BTC
	prometheusBlockAssemblerFees              prometheus.Counter
	prometheusBlockAssemblerHeight            prometheus.Gauge
	prometheusBlockAssemblerMine              prometheus.Histogram
	prometheusBlockAssemblerBlockTransactions prometheus.Histogram
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBlockAssemblerBlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "blockassembly",
			Name:      "blocks_mined",
			Help:      "Number of blocks mined",
		},
	)

	prometheusBlockAssemblerRollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "blockassembly",
			Name:      "rollbacks",
			Help:      "Number of mining batches rolled back",
		},
	)

	prometheusBlockAssemblerSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "blockassembly",
			Name:      "skipped_transactions",
			Help:      "Number of selected transactions skipped because they failed re-validation",
		},
	)

	prometheusBlockAssemblerFees = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "blockassembly",
			Name:      "fees_collected",
			Help:      "Total fees paid to miners in BTC",
		},
	)

	prometheusBlockAssemblerHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ledgersim",
			Subsystem: "blockassembly",
			Name:      "current_block_height",
			Help:      "Height of the last mined block",
		},
	)

	prometheusBlockAssemblerMine = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ledgersim",
			Subsystem: "blockassembly",
			Name:      "mine",
			Help:      "Histogram of mining a block",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusBlockAssemblerBlockTransactions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ledgersim",
			Subsystem: "blockassembly",
			Name:      "block_transactions",
			Help:      "Histogram of the number of transactions per mined block",
			Buckets:   util.MetricsBucketsTransactions,
		},
	)
}
