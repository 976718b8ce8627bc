package blockassembly

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/services/mempool"
	"github.com/bsv-blockchain/ledgersim/services/validator"
	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/stores/utxo/memory"
	"github.com/bsv-blockchain/ledgersim/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	g0 = model.NewOutpoint("genesis", 0)
	g1 = model.NewOutpoint("genesis", 1)
	g2 = model.NewOutpoint("genesis", 2)
)

// faultStore injects failures into an otherwise working store.
type faultStore struct {
	utxo.Store
	failRemove *model.Outpoint
	panicOn    *model.Outpoint
	failAdd    string
	restoreErr error
}

func (f *faultStore) Remove(ctx context.Context, key model.Outpoint) error {
	if f.panicOn != nil && key == *f.panicOn {
		panic("injected panic")
	}

	if f.failRemove != nil && key == *f.failRemove {
		return errors.NewStorageError("injected remove failure on %s", key)
	}

	return f.Store.Remove(ctx, key)
}

func (f *faultStore) Add(ctx context.Context, key model.Outpoint, amount model.Amount, owner string) error {
	if f.failAdd != "" && strings.HasPrefix(key.TxID, f.failAdd) {
		return errors.NewStorageError("injected add failure on %s", key)
	}

	return f.Store.Add(ctx, key, amount, owner)
}

func (f *faultStore) Restore(ctx context.Context, snapshot *utxo.Snapshot) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}

	return f.Store.Restore(ctx, snapshot)
}

type fixture struct {
	store     *faultStore
	mempool   *mempool.Mempool
	assembler *BlockAssembler
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	return setupWithStore(t, memory.New(ulogger.TestLogger{}), ulogger.TestLogger{}, opts...)
}

func setupWithStore(t *testing.T, backend utxo.Store, logger ulogger.Logger, opts ...Option) *fixture {
	t.Helper()

	ctx := context.Background()

	store := &faultStore{Store: backend}
	require.NoError(t, store.Add(ctx, g0, model.MustBTC(50), "alice"))
	require.NoError(t, store.Add(ctx, g1, model.MustBTC(30), "bob"))
	require.NoError(t, store.Add(ctx, g2, model.MustBTC(20), "charlie"))

	tSettings := &settings.Settings{
		Mempool:       settings.MempoolSettings{MaxSize: 50},
		BlockAssembly: settings.BlockAssemblySettings{DefaultBatchSize: 5, MaxBatchSize: 1000, MinerAddress: "miner"},
	}

	v := validator.New(logger)

	opts = append([]Option{WithCoinbaseIDFunc(func(miner string, height uint32, _ time.Time) string {
		return fmt.Sprintf("coinbase_%s_%d", miner, height)
	})}, opts...)

	return &fixture{
		store:     store,
		mempool:   mempool.New(logger, tSettings, v),
		assembler: NewBlockAssembler(logger, tSettings, NewChain(), v, opts...),
	}
}

func (f *fixture) submit(t *testing.T, tx *model.Transaction) {
	t.Helper()
	require.NoError(t, f.mempool.Add(context.Background(), tx, f.store))
}

func spend(id string, key model.Outpoint, owner string, outputs ...model.TxOutput) *model.Transaction {
	return model.NewTransaction(id, []model.TxInput{{TxID: key.TxID, Index: key.Index, Owner: owner}}, outputs)
}

func pay(btc float64, recipient string) model.TxOutput {
	return model.TxOutput{Amount: model.MustBTC(btc), Recipient: recipient}
}

func TestMine(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	tx := spend("tx1", g0, "alice", pay(10, "bob"), pay(39.999, "alice"))
	f.submit(t, tx)
	assert.Equal(t, model.MustBTC(0.001), tx.Fee)

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	require.True(t, result.Mined())
	assert.Empty(t, result.Skipped)
	require.NoError(t, result.Err)

	block := result.Block
	assert.Equal(t, uint32(1), block.Height)
	assert.Equal(t, "miner", block.Miner)
	assert.Equal(t, []string{"tx1"}, block.TransactionIDs())
	assert.Equal(t, model.MustBTC(0.001), block.TotalFees)
	assert.Equal(t, "coinbase_miner_1", block.CoinbaseID)

	assert.False(t, f.store.Exists(ctx, g0))

	entry, err := f.store.Get(ctx, model.NewOutpoint("tx1", 0))
	require.NoError(t, err)
	assert.Equal(t, model.Entry{Amount: model.MustBTC(10), Owner: "bob"}, *entry)

	entry, err = f.store.Get(ctx, model.NewOutpoint("tx1", 1))
	require.NoError(t, err)
	assert.Equal(t, model.Entry{Amount: model.MustBTC(39.999), Owner: "alice"}, *entry)

	entry, err = f.store.Get(ctx, model.NewOutpoint("coinbase_miner_1", 0))
	require.NoError(t, err)
	assert.Equal(t, model.Entry{Amount: model.MustBTC(0.001), Owner: "miner"}, *entry)

	assert.Equal(t, 0, f.mempool.Size())
	assert.False(t, f.mempool.IsSpent(g0))
	assert.Equal(t, uint32(1), f.assembler.Chain().Height())
	assert.Same(t, block, f.assembler.Chain().Tip())
}

func TestMineConservesSupply(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	before := f.store.TotalSupply(ctx)

	f.submit(t, spend("tx1", g0, "alice", pay(10, "bob"), pay(39.9, "alice")))
	f.submit(t, spend("tx2", g1, "bob", pay(29.5, "charlie")))
	f.submit(t, spend("tx3", g2, "charlie", pay(20, "alice")))

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	require.True(t, result.Mined())

	assert.Equal(t, model.MustBTC(0.6), result.Block.TotalFees)
	assert.Equal(t, before, f.store.TotalSupply(ctx))
	assert.Equal(t, model.MustBTC(0.6), f.store.BalanceOf(ctx, "miner"))
}

func TestMineOnEachStore(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func() utxo.Store{
		"memory":   func() utxo.Store { return memory.New(ulogger.TestLogger{}) },
		"swissmap": func() utxo.Store { return memory.NewSwissMap(ulogger.TestLogger{}, 16) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			f := setupWithStore(t, newStore(), ulogger.NewVerboseTestLogger(t))
			supply := f.store.TotalSupply(ctx)

			f.submit(t, spend("tx1", g0, "alice", pay(10, "bob"), pay(39.999, "alice")))

			result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
			require.NoError(t, err)
			require.Equal(t, StatusMined, result.Status, "first block: %v", result.Err)

			// the first batch left a snapshot sharing the store's state behind
			f.submit(t, spend("tx2", model.NewOutpoint("tx1", 0), "bob", pay(9.999, "charlie")))

			result, err = f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
			require.NoError(t, err)
			require.Equal(t, StatusMined, result.Status, "second block: %v", result.Err)

			assert.Equal(t, uint32(2), f.assembler.Chain().Height())
			assert.Equal(t, supply, f.store.TotalSupply(ctx))
			assert.Equal(t, model.MustBTC(29.999), f.store.BalanceOf(ctx, "charlie"))
			assert.Equal(t, model.MustBTC(0.002), f.store.BalanceOf(ctx, "miner"))
			assert.False(t, f.store.Exists(ctx, model.NewOutpoint("tx1", 0)))
		})
	}
}

func TestMineOrderAndBatchSize(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	f.submit(t, spend("low", g0, "alice", pay(49.99, "bob")))
	f.submit(t, spend("high", g1, "bob", pay(29, "alice")))
	f.submit(t, spend("mid", g2, "charlie", pay(19.5, "alice")))

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 2)
	require.NoError(t, err)
	require.True(t, result.Mined())

	assert.Equal(t, []string{"high", "mid"}, result.Block.TransactionIDs())
	assert.Equal(t, []string{"low"}, txIDs(f.mempool.Transactions()))

	result, err = f.assembler.Mine(ctx, "other", f.mempool, f.store, 2)
	require.NoError(t, err)
	require.True(t, result.Mined())
	assert.Equal(t, uint32(2), result.Block.Height)
	assert.Equal(t, []string{"low"}, result.Block.TransactionIDs())
}

func TestMineClampsBatchSize(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.assembler.settings = &settings.Settings{BlockAssembly: settings.BlockAssemblySettings{MaxBatchSize: 1}}

	f.submit(t, spend("a", g0, "alice", pay(49, "bob")))
	f.submit(t, spend("b", g1, "bob", pay(29, "alice")))

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 100)
	require.NoError(t, err)
	require.True(t, result.Mined())
	assert.Len(t, result.Block.Transactions, 1)
	assert.Equal(t, 1, f.mempool.Size())
}

func TestMineNothingToMine(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	before := f.store.Snapshot(ctx)

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusNothingToMine, result.Status)
	assert.False(t, result.Mined())
	assert.Nil(t, result.Block)
	assert.Equal(t, uint32(0), f.assembler.Chain().Height())
	assert.True(t, before.Equal(f.store.Snapshot(ctx)))
}

func TestMineZeroFee(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	f.submit(t, spend("free", g0, "alice", pay(50, "bob")))

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	require.True(t, result.Mined())

	assert.Equal(t, model.Amount(0), result.Block.TotalFees)
	assert.Empty(t, result.Block.CoinbaseID)

	_, ok := result.Block.CoinbaseOutpoint()
	assert.False(t, ok)
	assert.Equal(t, model.Amount(0), f.store.BalanceOf(ctx, "miner"))
}

func TestMineSkipsInvalidTransactions(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	f.submit(t, spend("stale", g0, "alice", pay(49, "bob")))
	f.submit(t, spend("good", g1, "bob", pay(29.9, "alice")))

	// consumed out of band after it was pooled
	require.NoError(t, f.store.Remove(ctx, g0))

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	require.True(t, result.Mined())

	assert.Equal(t, []string{"good"}, result.Block.TransactionIDs())
	assert.Equal(t, model.MustBTC(0.1), result.Block.TotalFees)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "stale", result.Skipped[0].TxID)
	assert.ErrorIs(t, result.Skipped[0].Err, errors.ErrUtxoNotFound)

	// skipped transactions stay pooled
	assert.Equal(t, []string{"stale"}, txIDs(f.mempool.Transactions()))
}

func TestMineAllSkippedStillProducesBlock(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	f.submit(t, spend("stale", g0, "alice", pay(49, "bob")))
	require.NoError(t, f.store.Remove(ctx, g0))

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	require.True(t, result.Mined())

	assert.Empty(t, result.Block.Transactions)
	assert.Empty(t, result.Block.CoinbaseID)
	assert.Len(t, result.Skipped, 1)
	assert.Equal(t, uint32(1), f.assembler.Chain().Height())
	assert.Equal(t, 1, f.mempool.Size())
}

func TestMineRollback(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		inject func(f *faultStore)
	}{
		{"remove fails", func(f *faultStore) { f.failRemove = &g1 }},
		{"output add fails", func(f *faultStore) { f.failAdd = "tx2" }},
		{"coinbase add fails", func(f *faultStore) { f.failAdd = "coinbase" }},
		{"panic while applying", func(f *faultStore) { f.panicOn = &g1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := ulogger.NewErrorTestLogger(t)
			defer logger.Shutdown()

			f := setupWithStore(t, memory.New(ulogger.TestLogger{}), logger)

			// tx1 has the higher fee and is applied before tx2 fails
			f.submit(t, spend("tx1", g0, "alice", pay(10, "bob"), pay(39, "alice")))
			f.submit(t, spend("tx2", g1, "bob", pay(29.5, "charlie")))

			before := f.store.Snapshot(ctx)

			tt.inject(f.store)

			result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
			require.NoError(t, err)

			assert.Equal(t, StatusRolledBack, result.Status)
			assert.Nil(t, result.Block)
			require.Error(t, result.Err)
			assert.ErrorIs(t, result.Err, errors.ErrMiningRollback)
			assert.Equal(t, errors.ERR_MINING_ROLLBACK, errors.CodeOf(result.Err))

			assert.True(t, before.Equal(f.store.Snapshot(ctx)), "store must match the pre-batch snapshot")
			assert.Equal(t, int64(1), logger.ErrorCount(), "the failed block is logged once")
			assert.Equal(t, uint32(0), f.assembler.Chain().Height())
			assert.Equal(t, 2, f.mempool.Size())

			// once the fault is gone the same batch mines
			*f.store = faultStore{Store: f.store.Store}

			result, err = f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
			require.NoError(t, err)
			require.True(t, result.Mined())
			assert.Equal(t, uint32(1), result.Block.Height)
		})
	}
}

func TestMineRestoreFailure(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	f.submit(t, spend("tx1", g0, "alice", pay(49, "bob")))

	f.store.failAdd = "tx1"
	f.store.restoreErr = errors.NewStorageError("injected restore failure")

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.ErrorIs(t, err, errors.ErrStorageError)
	require.NotNil(t, result)
	assert.Equal(t, StatusRolledBack, result.Status)
}

func TestMineCancelledContext(t *testing.T) {
	f := setup(t)

	f.submit(t, spend("tx1", g0, "alice", pay(49, "bob")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.assembler.Mine(ctx, "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusRolledBack, result.Status)
	assert.ErrorIs(t, result.Err, errors.ErrProcessing)
	assert.Equal(t, 1, f.mempool.Size())
}

func TestMineInvalidArguments(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.assembler.Mine(ctx, "", f.mempool, f.store, 5)
	require.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = f.assembler.Mine(ctx, "miner", f.mempool, f.store, 0)
	require.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = f.assembler.Mine(ctx, "miner", nil, f.store, 5)
	require.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = f.assembler.Mine(ctx, "miner", f.mempool, nil, 5)
	require.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestDefaultCoinbaseID(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	id := DefaultCoinbaseID("miner", 7, ts)
	assert.True(t, strings.HasPrefix(id, "coinbase_miner_7_"), id)
	assert.Len(t, strings.TrimPrefix(id, "coinbase_miner_7_"), 36)

	assert.Equal(t, id, DefaultCoinbaseID("miner", 7, ts))
	assert.NotEqual(t, id, DefaultCoinbaseID("miner", 8, ts))
	assert.NotEqual(t, id, DefaultCoinbaseID("miner", 7, ts.Add(time.Nanosecond)))
}

func TestMineWithClock(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f := setup(t, WithClock(func() time.Time { return ts }), WithCoinbaseIDFunc(DefaultCoinbaseID))

	f.submit(t, spend("tx1", g0, "alice", pay(49, "bob")))

	result, err := f.assembler.Mine(context.Background(), "miner", f.mempool, f.store, 5)
	require.NoError(t, err)
	require.True(t, result.Mined())
	assert.Equal(t, ts, result.Block.Timestamp)
	assert.Equal(t, DefaultCoinbaseID("miner", 1, ts), result.Block.CoinbaseID)
}

func TestChain(t *testing.T) {
	c := NewChain()

	assert.Equal(t, uint32(0), c.Height())
	assert.Nil(t, c.Tip())

	_, ok := c.Block(0)
	assert.False(t, ok)

	b1 := &model.Block{Height: 1}
	c.append(b1)

	assert.Equal(t, uint32(1), c.Height())

	got, ok := c.Block(1)
	require.True(t, ok)
	assert.Same(t, b1, got)

	_, ok = c.Block(2)
	assert.False(t, ok)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "MINED", StatusMined.String())
	assert.Equal(t, "NOTHING_TO_MINE", StatusNothingToMine.String())
	assert.Equal(t, "ROLLED_BACK", StatusRolledBack.String())
	assert.Equal(t, "UNKNOWN", Status(42).String())
}

func txIDs(txs []*model.Transaction) []string {
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}

	return ids
}
