// Package logger wraps a utxo.Store and logs every call with its arguments,
// result and call site. The factory enables it with logging=true on the store URL.
package logger

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/ulogger"
)

type Store struct {
	logger ulogger.Logger
	store  utxo.Store
}

func New(logger ulogger.Logger, store utxo.Store) utxo.Store {
	return &Store{
		logger: logger,
		store:  store,
	}
}

func caller() string {
	var callers []string

	depth := 3

	for i := 0; i < depth; i++ {
		pc, file, line, ok := runtime.Caller(2 + i)
		if !ok {
			break
		}

		// keep the last two path elements, the rest is noise
		folders := strings.Split(file, string(filepath.Separator))
		if len(folders) > 2 {
			folders = folders[len(folders)-2:]
		}

		file = filepath.Join(folders...)

		funcName := runtime.FuncForPC(pc).Name()
		funcPaths := strings.Split(funcName, "/")
		funcName = funcPaths[len(funcPaths)-1]

		callers = append(callers, fmt.Sprintf("called from %s: %s:%d", funcName, file, line))
	}

	return strings.Join(callers, ",")
}

func (s *Store) Health(ctx context.Context) (int, string, error) {
	s.logger.Infof("[UTXOStore][logger][Health] : %s", caller())
	return s.store.Health(ctx)
}

func (s *Store) Add(ctx context.Context, key model.Outpoint, amount model.Amount, owner string) error {
	err := s.store.Add(ctx, key, amount, owner)
	s.logger.Infof("[UTXOStore][logger][Add] key %s amount %s owner %s err %v : %s", key, amount, owner, err, caller())

	return err
}

func (s *Store) Remove(ctx context.Context, key model.Outpoint) error {
	err := s.store.Remove(ctx, key)
	s.logger.Infof("[UTXOStore][logger][Remove] key %s err %v : %s", key, err, caller())

	return err
}

func (s *Store) Exists(ctx context.Context, key model.Outpoint) bool {
	exists := s.store.Exists(ctx, key)
	s.logger.Debugf("[UTXOStore][logger][Exists] key %s exists %t : %s", key, exists, caller())

	return exists
}

func (s *Store) Get(ctx context.Context, key model.Outpoint) (*model.Entry, error) {
	entry, err := s.store.Get(ctx, key)
	s.logger.Debugf("[UTXOStore][logger][Get] key %s entry %v err %v : %s", key, entry, err, caller())

	return entry, err
}

func (s *Store) AmountOf(ctx context.Context, key model.Outpoint) (model.Amount, error) {
	amount, err := s.store.AmountOf(ctx, key)
	s.logger.Debugf("[UTXOStore][logger][AmountOf] key %s amount %s err %v : %s", key, amount, err, caller())

	return amount, err
}

func (s *Store) OwnerOf(ctx context.Context, key model.Outpoint) (string, error) {
	owner, err := s.store.OwnerOf(ctx, key)
	s.logger.Debugf("[UTXOStore][logger][OwnerOf] key %s owner %s err %v : %s", key, owner, err, caller())

	return owner, err
}

func (s *Store) BalanceOf(ctx context.Context, owner string) model.Amount {
	balance := s.store.BalanceOf(ctx, owner)
	s.logger.Debugf("[UTXOStore][logger][BalanceOf] owner %s balance %s : %s", owner, balance, caller())

	return balance
}

func (s *Store) UtxosOf(ctx context.Context, owner string) []model.OwnedUTXO {
	utxos := s.store.UtxosOf(ctx, owner)
	s.logger.Debugf("[UTXOStore][logger][UtxosOf] owner %s count %d : %s", owner, len(utxos), caller())

	return utxos
}

func (s *Store) TotalSupply(ctx context.Context) model.Amount {
	total := s.store.TotalSupply(ctx)
	s.logger.Debugf("[UTXOStore][logger][TotalSupply] %s : %s", total, caller())

	return total
}

func (s *Store) Len(ctx context.Context) int {
	return s.store.Len(ctx)
}

func (s *Store) Snapshot(ctx context.Context) *utxo.Snapshot {
	snapshot := s.store.Snapshot(ctx)
	s.logger.Infof("[UTXOStore][logger][Snapshot] %d utxos : %s", snapshot.Len(), caller())

	return snapshot
}

func (s *Store) Restore(ctx context.Context, snapshot *utxo.Snapshot) error {
	err := s.store.Restore(ctx, snapshot)

	size := 0
	if snapshot != nil {
		size = snapshot.Len()
	}

	s.logger.Infof("[UTXOStore][logger][Restore] %d utxos err %v : %s", size, err, caller())

	return err
}
