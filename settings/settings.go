package settings

import (
	"github.com/bsv-blockchain/ledgersim/model"
)

func NewSettings() *Settings {
	defaultFee, err := getAmount("wallet_defaultFee", "0.001")
	if err != nil {
		panic(err)
	}

	allocations, err := getAllocations("genesis_allocations", "alice:50,bob:30,charlie:20,david:10,eve:5")
	if err != nil {
		panic(err)
	}

	return &Settings{
		Logging: LoggingSettings{
			Level:  getString("logLevel", "INFO"),
			Type:   getString("logger_type", "zerolog"),
			Pretty: getBool("PRETTY_LOGS", true),
		},
		UtxoStore: UtxoStoreSettings{
			URL: getURL("utxostore", "memory://"),
		},
		Mempool: MempoolSettings{
			MaxSize: getInt("mempool_maxSize", 50),
		},
		BlockAssembly: BlockAssemblySettings{
			DefaultBatchSize: getInt("blockassembly_defaultBatchSize", 5),
			MaxBatchSize:     getInt("blockassembly_maxBatchSize", 1000),
			MinerAddress:     getString("blockassembly_minerAddress", "miner"),
		},
		Wallet: WalletSettings{
			DefaultFee: defaultFee,
		},
		Genesis: GenesisSettings{
			Allocations: allocations,
		},
		Metrics: MetricsSettings{
			PrometheusEndpoint: getString("prometheusEndpoint", "/metrics"),
		},
	}
}

// TotalAllocated is the supply created by seeding the genesis allocations.
func (g GenesisSettings) TotalAllocated() model.Amount {
	var total model.Amount

	for _, a := range g.Allocations {
		total += a.Amount
	}

	return total
}
