package mempool

import (
	"github.com/bsv-blockchain/ledgersim/model"
)

// Statistics summarises the fees of the pooled transactions. All fields are zero
// for an empty pool. AverageFee is truncated to whole satoshis.
type Statistics struct {
	Count      int
	TotalFee   model.Amount
	AverageFee model.Amount
	MaxFee     model.Amount
	MinFee     model.Amount
}

type entry struct {
	tx  *model.Transaction
	seq uint64
}

// spentIndex maps every outpoint claimed by a pooled transaction to that transaction's id.
type spentIndex map[model.Outpoint]string

func (s spentIndex) IsSpent(key model.Outpoint) bool {
	_, ok := s[key]
	return ok
}

// exceptTx hides the claims of a single pooled transaction, used to validate a
// candidate as if an eviction had already happened.
type exceptTx struct {
	spent spentIndex
	txID  string
}

func (e exceptTx) IsSpent(key model.Outpoint) bool {
	owner, ok := e.spent[key]
	return ok && owner != e.txID
}
