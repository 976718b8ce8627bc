package settings

import (
	"fmt"
	"io"

	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/ordishs/gocore"
)

// CmdSettings prints the raw gocore config followed by the resolved settings.
func CmdSettings(w io.Writer, version string, commit string, tSettings *settings.Settings) {
	stats := gocore.Config().Stats()
	_, _ = fmt.Fprintf(w, "STATS\n%s\nVERSION\n-------\n%s (%s)\n\n", stats, version, commit)

	_, _ = fmt.Fprintf(w, "SETTINGS\n--------\n")
	_, _ = fmt.Fprintf(w, "utxostore:        %s\n", tSettings.UtxoStore.URL)
	_, _ = fmt.Fprintf(w, "mempool max size: %d\n", tSettings.Mempool.MaxSize)
	_, _ = fmt.Fprintf(w, "batch size:       %d (max %d)\n", tSettings.BlockAssembly.DefaultBatchSize, tSettings.BlockAssembly.MaxBatchSize)
	_, _ = fmt.Fprintf(w, "miner:            %s\n", tSettings.BlockAssembly.MinerAddress)
	_, _ = fmt.Fprintf(w, "default fee:      %s\n", tSettings.Wallet.DefaultFee)
	_, _ = fmt.Fprintf(w, "genesis:          %d outputs, %s total\n", len(tSettings.Genesis.Allocations), tSettings.Genesis.TotalAllocated())

	for _, alloc := range tSettings.Genesis.Allocations {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", alloc.Owner, alloc.Amount)
	}
}
