package memory

import (
	"context"
	"net/http"
	"sync"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/ulogger"
	"github.com/dolthub/swiss"
)

const defaultSwissMapSize = 1024

// SwissMap keeps the utxo set in a swiss table. Snapshots are full copies.
type SwissMap struct {
	logger ulogger.Logger
	mu     sync.RWMutex
	m      *swiss.Map[model.Outpoint, model.Entry]
	total  model.Amount
}

func NewSwissMap(logger ulogger.Logger, size uint32) *SwissMap {
	if size == 0 {
		size = defaultSwissMapSize
	}

	// the swiss map uses a lot less memory than the standard map
	return &SwissMap{
		logger: logger,
		m:      swiss.NewMap[model.Outpoint, model.Entry](size),
	}
}

func (s *SwissMap) Health(_ context.Context) (int, string, error) {
	return http.StatusOK, "SwissMap Store available", nil
}

func (s *SwissMap) Add(_ context.Context, key model.Outpoint, amount model.Amount, owner string) error {
	if err := utxo.CheckAmount(key, amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	supply := s.total
	if old, ok := s.m.Get(key); ok {
		supply -= old.Amount
	}

	supply, err := utxo.AddToSupply(key, supply, amount)
	if err != nil {
		return err
	}

	s.m.Put(key, model.Entry{Amount: amount, Owner: owner})
	s.total = supply

	return nil
}

func (s *SwissMap) Remove(_ context.Context, key model.Outpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m.Get(key)
	if !ok {
		return utxo.NewNotFoundError(key)
	}

	s.m.Delete(key)
	s.total -= e.Amount

	return nil
}

func (s *SwissMap) Exists(_ context.Context, key model.Outpoint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.m.Has(key)
}

func (s *SwissMap) Get(_ context.Context, key model.Outpoint) (*model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.m.Get(key)
	if !ok {
		return nil, utxo.NewNotFoundError(key)
	}

	return &e, nil
}

func (s *SwissMap) AmountOf(ctx context.Context, key model.Outpoint) (model.Amount, error) {
	e, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	return e.Amount, nil
}

func (s *SwissMap) OwnerOf(ctx context.Context, key model.Outpoint) (string, error) {
	e, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}

	return e.Owner, nil
}

func (s *SwissMap) BalanceOf(_ context.Context, owner string) model.Amount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance model.Amount

	s.m.Iter(func(_ model.Outpoint, e model.Entry) (stop bool) {
		if e.Owner == owner {
			balance += e.Amount
		}

		return false
	})

	return balance
}

func (s *SwissMap) UtxosOf(_ context.Context, owner string) []model.OwnedUTXO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	utxos := make([]model.OwnedUTXO, 0)

	s.m.Iter(func(k model.Outpoint, e model.Entry) (stop bool) {
		if e.Owner == owner {
			utxos = append(utxos, model.OwnedUTXO{Outpoint: k, Amount: e.Amount})
		}

		return false
	})

	model.SortOwnedUTXOs(utxos)

	return utxos
}

func (s *SwissMap) TotalSupply(_ context.Context) model.Amount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.total
}

func (s *SwissMap) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.m.Count()
}

func (s *SwissMap) Snapshot(_ context.Context) *utxo.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make(map[model.Outpoint]model.Entry, s.m.Count())

	s.m.Iter(func(k model.Outpoint, e model.Entry) (stop bool) {
		entries[k] = e
		return false
	})

	return utxo.NewSnapshot(entries)
}

func (s *SwissMap) Restore(_ context.Context, snapshot *utxo.Snapshot) error {
	if snapshot == nil {
		return errors.NewInvalidArgumentError("[SwissMap] cannot restore from a nil snapshot")
	}

	total, err := snapshot.Supply()
	if err != nil {
		return err
	}

	//nolint:gosec // utxo sets in the simulator are far below 2^32 entries
	m := swiss.NewMap[model.Outpoint, model.Entry](uint32(snapshot.Len()) + defaultSwissMapSize)

	snapshot.ForEach(func(k model.Outpoint, e model.Entry) bool {
		m.Put(k, e)
		return true
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = m
	s.total = total

	s.logger.Debugf("[SwissMap] restored %d utxos from snapshot", m.Count())

	return nil
}
