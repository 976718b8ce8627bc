package memory

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/stores/utxo/tests"
	"github.com/bsv-blockchain/ledgersim/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	suite := map[string]func(*testing.T, *Memory){
		"health":                func(t *testing.T, db *Memory) { tests.Health(t, db) },
		"add and get":           func(t *testing.T, db *Memory) { tests.AddAndGet(t, db) },
		"missing":               func(t *testing.T, db *Memory) { tests.Missing(t, db) },
		"invalid amount":        func(t *testing.T, db *Memory) { tests.InvalidAmount(t, db) },
		"overwrite":             func(t *testing.T, db *Memory) { tests.Overwrite(t, db) },
		"remove":                func(t *testing.T, db *Memory) { tests.Remove(t, db) },
		"balances":              func(t *testing.T, db *Memory) { tests.Balances(t, db) },
		"snapshot independence": func(t *testing.T, db *Memory) { tests.SnapshotIndependence(t, db) },
		"restore":               func(t *testing.T, db *Memory) { tests.Restore(t, db) },
		"snapshot equal":        func(t *testing.T, db *Memory) { tests.SnapshotEqual(t, db) },
		"supply overflow":       func(t *testing.T, db *Memory) { tests.SupplyOverflow(t, db) },
	}

	for name, fn := range suite {
		t.Run("memory "+name, func(t *testing.T) {
			fn(t, New(ulogger.TestLogger{}))
		})
	}
}

func TestMemorySanity(t *testing.T) {
	db := New(ulogger.TestLogger{})
	tests.Sanity(t, db)
}

func TestMemoryCopyOnWrite(t *testing.T) {
	ctx := context.Background()
	db := New(ulogger.TestLogger{})

	tests.Seed(t, db)

	t.Run("snapshot shares until the next write", func(t *testing.T) {
		snapshot := db.Snapshot(ctx)
		require.True(t, db.shared)

		// reads do not clone
		_ = db.BalanceOf(ctx, "alice")
		require.True(t, db.shared)

		require.NoError(t, db.Add(ctx, model.NewOutpoint("tx", 0), 1, "carol"))
		require.False(t, db.shared)

		assert.Equal(t, 3, snapshot.Len())
		assert.Equal(t, 4, db.Len(ctx))

		// a remove right after a snapshot clones too
		snapshot = db.Snapshot(ctx)
		require.NoError(t, db.Remove(ctx, model.NewOutpoint("tx", 0)))
		require.False(t, db.shared)

		_, ok := snapshot.Get(model.NewOutpoint("tx", 0))
		assert.True(t, ok)
		assert.Equal(t, tests.FiftyBTC+tests.ThirtyBTC+tests.TwentyBTC, db.TotalSupply(ctx))
	})

	t.Run("failed remove does not clone", func(t *testing.T) {
		_ = db.Snapshot(ctx)

		require.Error(t, db.Remove(ctx, model.NewOutpoint("nope", 0)))
		assert.True(t, db.shared)
	})

	t.Run("restore adopts the snapshot in shared mode", func(t *testing.T) {
		snapshot := db.Snapshot(ctx)

		require.NoError(t, db.Remove(ctx, tests.Genesis0))
		require.NoError(t, db.Restore(ctx, snapshot))
		require.True(t, db.shared)

		require.NoError(t, db.Remove(ctx, tests.Genesis1))

		_, ok := snapshot.Get(tests.Genesis1)
		assert.True(t, ok)
	})
}

func BenchmarkMemory(b *testing.B) {
	db := New(ulogger.TestLogger{})
	tests.Benchmark(b, db)
}

func BenchmarkMemorySnapshotThenWrite(b *testing.B) {
	ctx := context.Background()
	db := New(ulogger.TestLogger{})

	for i := uint32(0); i < 10_000; i++ {
		_ = db.Add(ctx, model.NewOutpoint("genesis", i), 1, "alice")
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		snapshot := db.Snapshot(ctx)
		_ = db.Add(ctx, model.NewOutpoint("bench", 0), 1, "bob")
		_ = db.Restore(ctx, snapshot)
	}
}
