// Package memory is the default UTXO store, a plain Go map with copy-on-write
// snapshots.
//
// Snapshot does not copy anything: it hands out the live map and marks it shared.
// The first mutation after that clones the map, so the snapshot stays untouched.
// Restore adopts the snapshot's map the same way. Entries are plain values, so a
// shallow clone of the map is a full copy.
package memory

import (
	"context"
	"maps"
	"net/http"
	"sync"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/ulogger"
)

type Memory struct {
	logger  ulogger.Logger
	mu      sync.RWMutex
	entries map[model.Outpoint]model.Entry
	// shared is set while entries is also referenced by a snapshot
	shared bool
	// total is the sum of all amounts, kept so no sum over the store can overflow
	total model.Amount
}

func New(logger ulogger.Logger) *Memory {
	return &Memory{
		logger:  logger,
		entries: make(map[model.Outpoint]model.Entry),
	}
}

func (m *Memory) Health(_ context.Context) (int, string, error) {
	return http.StatusOK, "Memory Store available", nil
}

// ensureWritable must be called with the write lock held.
func (m *Memory) ensureWritable() {
	if !m.shared {
		return
	}

	m.entries = maps.Clone(m.entries)
	m.shared = false
}

func (m *Memory) Add(_ context.Context, key model.Outpoint, amount model.Amount, owner string) error {
	if err := utxo.CheckAmount(key, amount); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	supply := m.total
	if old, ok := m.entries[key]; ok {
		supply -= old.Amount
	}

	supply, err := utxo.AddToSupply(key, supply, amount)
	if err != nil {
		return err
	}

	m.ensureWritable()

	m.entries[key] = model.Entry{Amount: amount, Owner: owner}
	m.total = supply

	return nil
}

func (m *Memory) Remove(_ context.Context, key model.Outpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return utxo.NewNotFoundError(key)
	}

	m.ensureWritable()

	delete(m.entries, key)
	m.total -= e.Amount

	return nil
}

func (m *Memory) Exists(_ context.Context, key model.Outpoint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[key]

	return ok
}

func (m *Memory) Get(_ context.Context, key model.Outpoint) (*model.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, utxo.NewNotFoundError(key)
	}

	return &e, nil
}

func (m *Memory) AmountOf(ctx context.Context, key model.Outpoint) (model.Amount, error) {
	e, err := m.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	return e.Amount, nil
}

func (m *Memory) OwnerOf(ctx context.Context, key model.Outpoint) (string, error) {
	e, err := m.Get(ctx, key)
	if err != nil {
		return "", err
	}

	return e.Owner, nil
}

func (m *Memory) BalanceOf(_ context.Context, owner string) model.Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var balance model.Amount

	for _, e := range m.entries {
		if e.Owner == owner {
			balance += e.Amount
		}
	}

	return balance
}

func (m *Memory) UtxosOf(_ context.Context, owner string) []model.OwnedUTXO {
	m.mu.RLock()
	defer m.mu.RUnlock()

	utxos := make([]model.OwnedUTXO, 0)

	for k, e := range m.entries {
		if e.Owner == owner {
			utxos = append(utxos, model.OwnedUTXO{Outpoint: k, Amount: e.Amount})
		}
	}

	model.SortOwnedUTXOs(utxos)

	return utxos
}

func (m *Memory) TotalSupply(_ context.Context) model.Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.total
}

func (m *Memory) Len(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

func (m *Memory) Snapshot(_ context.Context) *utxo.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shared = true

	return utxo.NewSnapshot(m.entries)
}

func (m *Memory) Restore(_ context.Context, snapshot *utxo.Snapshot) error {
	if snapshot == nil {
		return errors.NewInvalidArgumentError("[Memory] cannot restore from a nil snapshot")
	}

	total, err := snapshot.Supply()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = snapshot.Entries()
	m.shared = true
	m.total = total

	m.logger.Debugf("[Memory] restored %d utxos from snapshot", len(m.entries))

	return nil
}
