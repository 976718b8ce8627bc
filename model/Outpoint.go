package model

import (
	"fmt"
	"sort"
)

// Outpoint identifies one unspent output: the id of the transaction that created
// it and the output's position. It is comparable and used directly as a map key.
type Outpoint struct {
	TxID  string
	Index uint32
}

func NewOutpoint(txID string, index uint32) Outpoint {
	return Outpoint{TxID: txID, Index: index}
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}

// Less orders outpoints by transaction id, then index.
func (o Outpoint) Less(other Outpoint) bool {
	if o.TxID != other.TxID {
		return o.TxID < other.TxID
	}

	return o.Index < other.Index
}

// SortOutpoints sorts in place using Less.
func SortOutpoints(outpoints []Outpoint) {
	sort.Slice(outpoints, func(i, j int) bool {
		return outpoints[i].Less(outpoints[j])
	})
}

// Entry is the value stored for an unspent output.
type Entry struct {
	Amount Amount
	Owner  string
}

// OwnedUTXO is an outpoint together with its value, as returned by per-owner queries.
type OwnedUTXO struct {
	Outpoint Outpoint
	Amount   Amount
}

func SortOwnedUTXOs(utxos []OwnedUTXO) {
	sort.Slice(utxos, func(i, j int) bool {
		return utxos[i].Outpoint.Less(utxos[j].Outpoint)
	})
}
