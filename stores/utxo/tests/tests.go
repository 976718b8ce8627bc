// Package tests holds the behavioural suite every utxo.Store backend must pass.
package tests

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"testing"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	Genesis0 = model.NewOutpoint("genesis", 0)
	Genesis1 = model.NewOutpoint("genesis", 1)
	Genesis2 = model.NewOutpoint("genesis", 2)

	FiftyBTC  = model.MustBTC(50)
	ThirtyBTC = model.MustBTC(30)
	TwentyBTC = model.MustBTC(20)
)

// Seed adds alice 50, bob 30 and alice 20 under the genesis keys.
func Seed(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	require.NoError(t, db.Add(ctx, Genesis0, FiftyBTC, "alice"))
	require.NoError(t, db.Add(ctx, Genesis1, ThirtyBTC, "bob"))
	require.NoError(t, db.Add(ctx, Genesis2, TwentyBTC, "alice"))
}

func Health(t *testing.T, db utxo.Store) {
	status, msg, err := db.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, msg)
}

func AddAndGet(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	Seed(t, db)

	require.True(t, db.Exists(ctx, Genesis0))
	require.False(t, db.Exists(ctx, model.NewOutpoint("genesis", 99)))

	entry, err := db.Get(ctx, Genesis0)
	require.NoError(t, err)
	assert.Equal(t, model.Entry{Amount: FiftyBTC, Owner: "alice"}, *entry)

	amount, err := db.AmountOf(ctx, Genesis1)
	require.NoError(t, err)
	assert.Equal(t, ThirtyBTC, amount)

	owner, err := db.OwnerOf(ctx, Genesis1)
	require.NoError(t, err)
	assert.Equal(t, "bob", owner)

	assert.Equal(t, 3, db.Len(ctx))
}

func Missing(t *testing.T, db utxo.Store) {
	ctx := context.Background()
	missing := model.NewOutpoint("nope", 0)

	_, err := db.Get(ctx, missing)
	require.ErrorIs(t, err, errors.ErrNotFound)

	_, err = db.AmountOf(ctx, missing)
	require.ErrorIs(t, err, errors.ErrNotFound)

	_, err = db.OwnerOf(ctx, missing)
	require.ErrorIs(t, err, errors.ErrNotFound)

	err = db.Remove(ctx, missing)
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func InvalidAmount(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	for _, amount := range []model.Amount{0, -1, -model.MustBTC(5)} {
		err := db.Add(ctx, Genesis0, amount, "alice")
		require.ErrorIs(t, err, errors.ErrInvalidAmount, "amount %s", amount)
	}

	assert.False(t, db.Exists(ctx, Genesis0))
	assert.Equal(t, 0, db.Len(ctx))
}

func Overwrite(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	require.NoError(t, db.Add(ctx, Genesis0, FiftyBTC, "alice"))
	require.NoError(t, db.Add(ctx, Genesis0, TwentyBTC, "bob"))

	entry, err := db.Get(ctx, Genesis0)
	require.NoError(t, err)
	assert.Equal(t, model.Entry{Amount: TwentyBTC, Owner: "bob"}, *entry)
	assert.Equal(t, 1, db.Len(ctx))
}

// Remove checks that a key can only be spent once until it is added again.
func Remove(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	Seed(t, db)

	require.NoError(t, db.Remove(ctx, Genesis0))
	assert.False(t, db.Exists(ctx, Genesis0))

	err := db.Remove(ctx, Genesis0)
	require.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, db.Add(ctx, Genesis0, FiftyBTC, "alice"))
	require.NoError(t, db.Remove(ctx, Genesis0))
}

func Balances(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	assert.Equal(t, model.Amount(0), db.BalanceOf(ctx, "alice"))
	assert.Empty(t, db.UtxosOf(ctx, "alice"))

	Seed(t, db)

	assert.Equal(t, FiftyBTC+TwentyBTC, db.BalanceOf(ctx, "alice"))
	assert.Equal(t, ThirtyBTC, db.BalanceOf(ctx, "bob"))
	assert.Equal(t, model.Amount(0), db.BalanceOf(ctx, "nobody"))

	assert.Equal(t, []model.OwnedUTXO{
		{Outpoint: Genesis0, Amount: FiftyBTC},
		{Outpoint: Genesis2, Amount: TwentyBTC},
	}, db.UtxosOf(ctx, "alice"))

	assert.Equal(t, FiftyBTC+ThirtyBTC+TwentyBTC, db.TotalSupply(ctx))
}

// SupplyOverflow checks that no add can push the total supply past the largest
// Amount, so balances and supply sums stay exact.
func SupplyOverflow(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	require.NoError(t, db.Add(ctx, Genesis0, math.MaxInt64, "alice"))

	err := db.Add(ctx, Genesis1, 1, "bob")
	require.ErrorIs(t, err, errors.ErrInvalidAmount)
	assert.False(t, db.Exists(ctx, Genesis1))
	assert.Equal(t, model.Amount(math.MaxInt64), db.TotalSupply(ctx))

	// an overwrite replaces the old amount instead of adding to it
	require.NoError(t, db.Add(ctx, Genesis0, math.MaxInt64-1, "alice"))
	require.NoError(t, db.Add(ctx, Genesis1, 1, "bob"))

	assert.Equal(t, model.Amount(math.MaxInt64), db.TotalSupply(ctx))
	assert.Equal(t, model.Amount(math.MaxInt64-1), db.BalanceOf(ctx, "alice"))

	snapshot := db.Snapshot(ctx)

	require.NoError(t, db.Remove(ctx, Genesis0))
	assert.Equal(t, model.Amount(1), db.TotalSupply(ctx))

	require.NoError(t, db.Restore(ctx, snapshot))
	assert.Equal(t, model.Amount(math.MaxInt64), db.TotalSupply(ctx))

	err = db.Restore(ctx, utxo.NewSnapshot(map[model.Outpoint]model.Entry{
		Genesis0: {Amount: math.MaxInt64, Owner: "alice"},
		Genesis1: {Amount: math.MaxInt64, Owner: "bob"},
	}))
	require.ErrorIs(t, err, errors.ErrInvalidAmount)
	assert.True(t, snapshot.Equal(db.Snapshot(ctx)))
}

// SnapshotIndependence checks that mutating the store never changes an earlier snapshot.
func SnapshotIndependence(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	Seed(t, db)

	snapshot := db.Snapshot(ctx)
	require.Equal(t, 3, snapshot.Len())

	require.NoError(t, db.Remove(ctx, Genesis0))
	require.NoError(t, db.Add(ctx, Genesis1, model.MustBTC(1), "mallory"))
	require.NoError(t, db.Add(ctx, model.NewOutpoint("tx1", 0), model.MustBTC(7), "carol"))

	assert.Equal(t, 3, snapshot.Len())

	e, ok := snapshot.Get(Genesis0)
	require.True(t, ok)
	assert.Equal(t, model.Entry{Amount: FiftyBTC, Owner: "alice"}, e)

	e, ok = snapshot.Get(Genesis1)
	require.True(t, ok)
	assert.Equal(t, "bob", e.Owner)

	_, ok = snapshot.Get(model.NewOutpoint("tx1", 0))
	assert.False(t, ok)

	assert.Equal(t, FiftyBTC+ThirtyBTC+TwentyBTC, snapshot.TotalSupply())
}

// Restore checks that restore brings back the exact snapshot content, and that
// the restored store and the snapshot stay independent afterwards.
func Restore(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	Seed(t, db)

	before := db.Snapshot(ctx)

	require.NoError(t, db.Remove(ctx, Genesis0))
	require.NoError(t, db.Remove(ctx, Genesis1))
	require.NoError(t, db.Add(ctx, model.NewOutpoint("tx1", 0), model.MustBTC(80), "bob"))

	require.NoError(t, db.Restore(ctx, before))
	assert.True(t, before.Equal(db.Snapshot(ctx)))
	assert.Equal(t, FiftyBTC+ThirtyBTC+TwentyBTC, db.TotalSupply(ctx))
	assert.False(t, db.Exists(ctx, model.NewOutpoint("tx1", 0)))

	// mutating after restore must not leak into the snapshot
	require.NoError(t, db.Remove(ctx, Genesis2))
	assert.Equal(t, 3, before.Len())

	_, ok := before.Get(Genesis2)
	assert.True(t, ok)

	// restoring the same snapshot twice works
	require.NoError(t, db.Restore(ctx, before))
	assert.True(t, db.Exists(ctx, Genesis2))

	err := db.Restore(ctx, nil)
	require.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func SnapshotEqual(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	Seed(t, db)

	a := db.Snapshot(ctx)
	b := db.Snapshot(ctx)
	assert.True(t, a.Equal(b))

	require.NoError(t, db.Add(ctx, Genesis0, FiftyBTC, "bob"))
	assert.False(t, a.Equal(db.Snapshot(ctx)))

	var visited []model.Outpoint

	a.ForEach(func(key model.Outpoint, _ model.Entry) bool {
		visited = append(visited, key)
		return true
	})

	assert.Equal(t, []model.Outpoint{Genesis0, Genesis1, Genesis2}, visited)
}

// Sanity hammers the store from several goroutines.
func Sanity(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			owner := fmt.Sprintf("owner-%d", w)

			for i := uint32(0); i < 100; i++ {
				key := model.NewOutpoint(owner, i)

				assert.NoError(t, db.Add(ctx, key, model.Amount(i+1), owner))
				_ = db.Snapshot(ctx)
				_ = db.BalanceOf(ctx, owner)

				if i%2 == 0 {
					assert.NoError(t, db.Remove(ctx, key))
				}
			}
		}(w)
	}

	wg.Wait()

	assert.Equal(t, 8*50, db.Len(ctx))

	// amounts 2, 4, ..., 100 remain per owner
	var expected model.Amount
	for i := 2; i <= 100; i += 2 {
		expected += model.Amount(i)
	}

	assert.Equal(t, expected, db.BalanceOf(ctx, "owner-3"))
}

func Benchmark(b *testing.B, db utxo.Store) {
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		//nolint:gosec // benchmark loop
		key := model.NewOutpoint("bench", uint32(i))

		if err := db.Add(ctx, key, 1, "bench"); err != nil {
			b.Fatal(err)
		}

		if err := db.Remove(ctx, key); err != nil {
			b.Fatal(err)
		}
	}
}
