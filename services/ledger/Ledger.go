// Package ledger wires the utxo store, validator, mempool and block assembler
// into one simulator instance.
//
// Ledger serialises every mutation behind a single writer lock, so a mining
// batch is never interleaved with another submission or store update. Queries
// take the read lock and may run concurrently with each other.
package ledger

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/services/blockassembly"
	"github.com/bsv-blockchain/ledgersim/services/mempool"
	"github.com/bsv-blockchain/ledgersim/services/validator"
	"github.com/bsv-blockchain/ledgersim/services/wallet"
	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/stores/utxo/factory"
	"github.com/bsv-blockchain/ledgersim/ulogger"
	"github.com/bsv-blockchain/ledgersim/util/health"
)

const GenesisTxID = "genesis"

type Ledger struct {
	logger    ulogger.Logger
	settings  *settings.Settings
	mu        sync.RWMutex
	store     utxo.Store
	validator *validator.Validator
	mempool   *mempool.Mempool
	assembler *blockassembly.BlockAssembler
}

// New creates a ledger on the store configured by tSettings.UtxoStore.
func New(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, opts ...blockassembly.Option) (*Ledger, error) {
	store, err := factory.NewStore(ctx, logger, tSettings)
	if err != nil {
		return nil, err
	}

	return NewWithStore(logger, tSettings, store, opts...), nil
}

func NewWithStore(logger ulogger.Logger, tSettings *settings.Settings, store utxo.Store, opts ...blockassembly.Option) *Ledger {
	v := validator.New(logger)

	return &Ledger{
		logger:    logger,
		settings:  tSettings,
		store:     store,
		validator: v,
		mempool:   mempool.New(logger, tSettings, v),
		assembler: blockassembly.NewBlockAssembler(logger, tSettings, blockassembly.NewChain(), v, opts...),
	}
}

// SeedGenesis adds one ("genesis", i) output per allocation.
func (l *Ledger) SeedGenesis(ctx context.Context, allocations []settings.Allocation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, alloc := range allocations {
		//nolint:gosec // allocation lists are short
		key := model.NewOutpoint(GenesisTxID, uint32(i))

		if err := l.store.Add(ctx, key, alloc.Amount, alloc.Owner); err != nil {
			return errors.NewProcessingError("[Ledger] failed to seed genesis output %d for %s", i, alloc.Owner, err)
		}
	}

	l.logger.Infof("[Ledger] seeded %d genesis outputs, total supply %s", len(allocations), l.store.TotalSupply(ctx))

	return nil
}

func (l *Ledger) AddUTXO(ctx context.Context, key model.Outpoint, amount model.Amount, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.Add(ctx, key, amount, owner)
}

func (l *Ledger) RemoveUTXO(ctx context.Context, key model.Outpoint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.Remove(ctx, key)
}

// SubmitTransaction offers tx to the mempool.
func (l *Ledger) SubmitTransaction(ctx context.Context, tx *model.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mempool.Add(ctx, tx, l.store)
}

// Transfer builds a transfer paying the configured default fee and submits it.
func (l *Ledger) Transfer(ctx context.Context, sender, recipient string, amount model.Amount) (*model.Transaction, error) {
	return l.SubmitTransfer(ctx, wallet.TransferRequest{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Fee:       l.settings.Wallet.DefaultFee,
	})
}

// SubmitTransfer builds a transfer from req and submits it. The built transaction
// is returned even when the mempool rejects it.
func (l *Ledger) SubmitTransfer(ctx context.Context, req wallet.TransferRequest) (*model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := wallet.NewTransfer(ctx, l.store, l.mempool, req)
	if err != nil {
		return nil, err
	}

	return tx, l.mempool.Add(ctx, tx, l.store)
}

// Mine assembles one block. See blockassembly.BlockAssembler.Mine.
func (l *Ledger) Mine(ctx context.Context, miner string, batchSize int) (*blockassembly.MiningResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assembler.Mine(ctx, miner, l.mempool, l.store, batchSize)
}

func (l *Ledger) ClearMempool() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.mempool.Clear()
}

func (l *Ledger) Balance(ctx context.Context, owner string) model.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.store.BalanceOf(ctx, owner)
}

func (l *Ledger) UtxosOf(ctx context.Context, owner string) []model.OwnedUTXO {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.store.UtxosOf(ctx, owner)
}

func (l *Ledger) Snapshot(ctx context.Context) *utxo.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.store.Snapshot(ctx)
}

func (l *Ledger) TotalSupply(ctx context.Context) model.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.store.TotalSupply(ctx)
}

func (l *Ledger) MempoolStatistics() mempool.Statistics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.mempool.Statistics()
}

// TopTransactions returns the n highest fee pooled transactions.
func (l *Ledger) TopTransactions(n int) []*model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.mempool.Top(n)
}

func (l *Ledger) Height() uint32 {
	return l.assembler.Chain().Height()
}

// Health reports the store, mempool and chain as one JSON report.
func (l *Ledger) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	checks := []health.Check{
		{Name: "UTXOStore", Check: func(ctx context.Context, _ bool) (int, string, error) {
			return l.store.Health(ctx)
		}},
		{Name: "Mempool", Check: func(context.Context, bool) (int, string, error) {
			return http.StatusOK, fmt.Sprintf("%d of %d transactions", l.mempool.Size(), l.mempool.MaxSize()), nil
		}},
		{Name: "Chain", Check: func(context.Context, bool) (int, string, error) {
			return http.StatusOK, fmt.Sprintf("height %d", l.assembler.Chain().Height()), nil
		}},
	}

	return health.CheckAll(ctx, checkLiveness, checks)
}
