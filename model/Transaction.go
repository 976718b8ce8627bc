package model

import (
	"fmt"
	"strings"
)

type TxInput struct {
	TxID  string
	Index uint32
	// Owner is the identity the submitter claims owns the referenced output.
	Owner string
}

func (in TxInput) Outpoint() Outpoint {
	return Outpoint{TxID: in.TxID, Index: in.Index}
}

type TxOutput struct {
	Amount    Amount
	Recipient string
}

// Transaction moves value from existing outputs to new ones. Fee is only
// meaningful once the transaction has passed validation.
type Transaction struct {
	ID      string
	Inputs  []TxInput
	Outputs []TxOutput
	Fee     Amount
}

func NewTransaction(id string, inputs []TxInput, outputs []TxOutput) *Transaction {
	return &Transaction{
		ID:      id,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// TotalOutput sums the output amounts. ok is false if the sum does not fit in an Amount.
func (tx *Transaction) TotalOutput() (total Amount, ok bool) {
	for _, out := range tx.Outputs {
		if total, ok = total.CheckedAdd(out.Amount); !ok {
			return 0, false
		}
	}

	return total, true
}

// Outpoints returns the keys of the outputs this transaction spends, in input order.
func (tx *Transaction) Outpoints() []Outpoint {
	outpoints := make([]Outpoint, 0, len(tx.Inputs))

	for _, in := range tx.Inputs {
		outpoints = append(outpoints, in.Outpoint())
	}

	return outpoints
}

// OutputOutpoint is the key the i-th output is stored under once the transaction is mined.
func (tx *Transaction) OutputOutpoint(i int) Outpoint {
	//nolint:gosec // output counts are bounded by the caller
	return Outpoint{TxID: tx.ID, Index: uint32(i)}
}

func (tx *Transaction) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Transaction %s (fee: %s)\n", tx.ID, tx.Fee))

	for _, in := range tx.Inputs {
		sb.WriteString(fmt.Sprintf("\tin  %s:%d [%s]\n", in.TxID, in.Index, in.Owner))
	}

	for i, out := range tx.Outputs {
		sb.WriteString(fmt.Sprintf("\tout %d: %s -> %s\n", i, out.Amount, out.Recipient))
	}

	return sb.String()
}
