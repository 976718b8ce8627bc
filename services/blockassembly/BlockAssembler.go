// Package blockassembly mines blocks from the mempool into the UTXO store.
//
// A mine call selects the highest fee transactions, re-validates each one against
// the live store and applies the survivors. Re-validation failures are soft: the
// transaction is skipped and stays in the mempool. Any failure while applying a
// transaction is fatal for the whole batch and the store is restored from the
// snapshot taken before the batch started.
package blockassembly

import (
	"context"
	"sync"
	"time"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/services/validator"
	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/ulogger"
)

// Mempool is the part of the mempool the assembler selects from.
type Mempool interface {
	Top(n int) []*model.Transaction
	Remove(txID string) bool
}

type BlockAssembler struct {
	logger    ulogger.Logger
	settings  *settings.Settings
	chain     *Chain
	validator validator.Interface
	options   *Options
	mu        sync.Mutex
}

func NewBlockAssembler(logger ulogger.Logger, tSettings *settings.Settings, chain *Chain, v validator.Interface, opts ...Option) *BlockAssembler {
	initPrometheusMetrics()

	if chain == nil {
		chain = NewChain()
	}

	if v == nil {
		v = validator.New(logger)
	}

	return &BlockAssembler{
		logger:    logger,
		settings:  tSettings,
		chain:     chain,
		validator: v,
		options:   ProcessOptions(opts...),
	}
}

func (b *BlockAssembler) Chain() *Chain {
	return b.chain
}

// Mine assembles one block of at most batchSize transactions paying fees to miner.
//
// The returned error is reserved for bad arguments and for a failed restore, which
// leaves the store in an unknown state. Every other outcome, including a rolled
// back batch, is described by the MiningResult.
func (b *BlockAssembler) Mine(ctx context.Context, miner string, mp Mempool, store utxo.Store, batchSize int) (*MiningResult, error) {
	if miner == "" {
		return nil, errors.NewInvalidArgumentError("[BlockAssembler] miner address is empty")
	}

	if mp == nil || store == nil {
		return nil, errors.NewInvalidArgumentError("[BlockAssembler] mempool and utxo store are required")
	}

	if batchSize <= 0 {
		return nil, errors.NewInvalidArgumentError("[BlockAssembler] batch size must be positive, got %d", batchSize)
	}

	if maxBatch := b.settings.BlockAssembly.MaxBatchSize; maxBatch > 0 && batchSize > maxBatch {
		b.logger.Warnf("[BlockAssembler] batch size %d exceeds maximum, using %d", batchSize, maxBatch)
		batchSize = maxBatch
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()

	defer func() {
		prometheusBlockAssemblerMine.Observe(time.Since(start).Seconds())
	}()

	selected := mp.Top(batchSize)
	if len(selected) == 0 {
		b.logger.Infof("[BlockAssembler] nothing to mine")

		return &MiningResult{Status: StatusNothingToMine}, nil
	}

	preBatch := store.Snapshot(ctx)
	height := b.chain.Height() + 1
	timestamp := b.options.now()

	block, skipped, err := b.apply(ctx, miner, height, timestamp, selected, store)

	for _, s := range skipped {
		b.logger.Warnf("[BlockAssembler][%s] skipped: %v", s.TxID, s.Err)
	}

	prometheusBlockAssemblerSkipped.Add(float64(len(skipped)))

	if err != nil {
		prometheusBlockAssemblerRollbacks.Inc()

		b.logger.Errorf("[BlockAssembler] block %d failed, restoring utxo store: %v", height, err)

		if restoreErr := store.Restore(ctx, preBatch); restoreErr != nil {
			b.logger.Errorf("[BlockAssembler] failed to restore utxo store: %v", restoreErr)

			return &MiningResult{Status: StatusRolledBack, Skipped: skipped, Err: err},
				errors.NewStorageError("[BlockAssembler] failed to restore utxo store after failed block %d", height, restoreErr)
		}

		return &MiningResult{
			Status:  StatusRolledBack,
			Skipped: skipped,
			Err:     errors.NewMiningRollbackError("[BlockAssembler] block %d rolled back", height, err),
		}, nil
	}

	b.chain.append(block)

	for _, tx := range block.Transactions {
		mp.Remove(tx.ID)
	}

	prometheusBlockAssemblerBlocks.Inc()
	prometheusBlockAssemblerHeight.Set(float64(block.Height))
	prometheusBlockAssemblerBlockTransactions.Observe(float64(len(block.Transactions)))
	prometheusBlockAssemblerFees.Add(block.TotalFees.BTC())

	b.logger.Infof("[BlockAssembler] mined block %d by %s with %d transactions, fees %s", block.Height, miner, len(block.Transactions), block.TotalFees)

	return &MiningResult{Status: StatusMined, Block: block, Skipped: skipped}, nil
}

// apply runs the batch against store. A non nil error means the store holds a
// partial batch and must be restored by the caller.
func (b *BlockAssembler) apply(ctx context.Context, miner string, height uint32, timestamp time.Time, selected []*model.Transaction,
	store utxo.Store) (block *model.Block, skipped []SkippedTx, err error) {
	defer func() {
		if r := recover(); r != nil {
			block = nil
			err = errors.NewProcessingError("[BlockAssembler] panic while applying block %d: %v", height, r)
		}
	}()

	var (
		totalFees model.Amount
		applied   = make([]*model.Transaction, 0, len(selected))
	)

	for _, tx := range selected {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, skipped, errors.NewProcessingError("[BlockAssembler] block %d cancelled", height, ctxErr)
		}

		if _, vErr := b.validator.Validate(ctx, tx, store, nil, validator.WithSkipMempoolCheck(true)); vErr != nil {
			skipped = append(skipped, SkippedTx{TxID: tx.ID, Err: vErr})
			continue
		}

		for _, in := range tx.Inputs {
			if rErr := store.Remove(ctx, in.Outpoint()); rErr != nil {
				return nil, skipped, errors.NewProcessingError("[BlockAssembler][%s] failed to spend %s", tx.ID, in.Outpoint(), rErr)
			}
		}

		for i, out := range tx.Outputs {
			if aErr := store.Add(ctx, tx.OutputOutpoint(i), out.Amount, out.Recipient); aErr != nil {
				return nil, skipped, errors.NewProcessingError("[BlockAssembler][%s] failed to create output %d", tx.ID, i, aErr)
			}
		}

		totalFees += tx.Fee
		applied = append(applied, tx)
	}

	block = &model.Block{
		Height:       height,
		Timestamp:    timestamp,
		Miner:        miner,
		Transactions: applied,
		TotalFees:    totalFees,
	}

	if totalFees > 0 {
		block.CoinbaseID = b.options.coinbaseID(miner, height, timestamp)

		coinbase, _ := block.CoinbaseOutpoint()
		if aErr := store.Add(ctx, coinbase, totalFees, miner); aErr != nil {
			return nil, skipped, errors.NewProcessingError("[BlockAssembler] failed to create coinbase %s", coinbase, aErr)
		}
	}

	return block, skipped, nil
}
