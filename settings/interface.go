package settings

import (
	"net/url"

	"github.com/bsv-blockchain/ledgersim/model"
)

type LoggingSettings struct {
	Level  string
	Type   string
	Pretty bool
}

type UtxoStoreSettings struct {
	URL *url.URL
}

type MempoolSettings struct {
	MaxSize int
}

type BlockAssemblySettings struct {
	DefaultBatchSize int
	MaxBatchSize     int
	MinerAddress     string
}

type WalletSettings struct {
	DefaultFee model.Amount
}

// Allocation is one genesis output.
type Allocation struct {
	Owner  string
	Amount model.Amount
}

type GenesisSettings struct {
	Allocations []Allocation
}

type MetricsSettings struct {
	PrometheusEndpoint string
}

type Settings struct {
	Logging       LoggingSettings
	UtxoStore     UtxoStoreSettings
	Mempool       MempoolSettings
	BlockAssembly BlockAssemblySettings
	Wallet        WalletSettings
	Genesis       GenesisSettings
	Metrics       MetricsSettings
}
