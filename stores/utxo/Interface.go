// Package utxo defines the store of unspent outputs.
//
// Every key present in a store is unspent. Remove is the only way a key leaves the
// store; there is no spent-but-retained state. Amounts are always positive.
package utxo

import (
	"context"

	"github.com/bsv-blockchain/ledgersim/model"
)

// Reader is the read side of a store. Validation only ever needs this.
type Reader interface {
	Exists(ctx context.Context, key model.Outpoint) bool
	Get(ctx context.Context, key model.Outpoint) (*model.Entry, error)
	AmountOf(ctx context.Context, key model.Outpoint) (model.Amount, error)
	OwnerOf(ctx context.Context, key model.Outpoint) (string, error)
}

type Store interface {
	Reader

	Health(ctx context.Context) (int, string, error)

	// Add inserts or overwrites key. Fails with ERR_INVALID_AMOUNT if amount <= 0.
	Add(ctx context.Context, key model.Outpoint, amount model.Amount, owner string) error
	// Remove deletes key. Fails with ERR_NOT_FOUND if the key is absent.
	Remove(ctx context.Context, key model.Outpoint) error

	BalanceOf(ctx context.Context, owner string) model.Amount
	// UtxosOf returns every output owned by owner, sorted by outpoint.
	UtxosOf(ctx context.Context, owner string) []model.OwnedUTXO
	TotalSupply(ctx context.Context) model.Amount
	Len(ctx context.Context) int

	// Snapshot returns an immutable view of the store. Later mutations of the
	// store are never visible through it.
	Snapshot(ctx context.Context) *Snapshot
	// Restore replaces the whole content of the store with the snapshot.
	Restore(ctx context.Context, snapshot *Snapshot) error
}
