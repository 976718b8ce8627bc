package blockassembly

import (
	"github.com/bsv-blockchain/ledgersim/model"
)

type Status int

const (
	// StatusNothingToMine means the mempool had nothing to select. The store was not touched.
	StatusNothingToMine Status = iota
	// StatusMined means a block was appended to the chain.
	StatusMined
	// StatusRolledBack means the batch failed part way and the store was restored.
	StatusRolledBack
)

func (s Status) String() string {
	switch s {
	case StatusNothingToMine:
		return "NOTHING_TO_MINE"
	case StatusMined:
		return "MINED"
	case StatusRolledBack:
		return "ROLLED_BACK"
	default:
		return "UNKNOWN"
	}
}

// SkippedTx is a selected transaction that failed re-validation and was left in the mempool.
type SkippedTx struct {
	TxID string
	Err  error
}

type MiningResult struct {
	Status  Status
	Block   *model.Block
	Skipped []SkippedTx
	// Err is the cause of a rollback.
	Err error
}

// Mined reports whether a block was produced.
func (r *MiningResult) Mined() bool {
	return r != nil && r.Status == StatusMined
}
