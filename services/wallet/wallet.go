// Package wallet builds transfer transactions from an owner's confirmed outputs.
package wallet

import (
	"context"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/services/validator"
	"github.com/google/uuid"
)

// UtxoLister lists the confirmed outputs of an owner.
type UtxoLister interface {
	UtxosOf(ctx context.Context, owner string) []model.OwnedUTXO
}

type TransferRequest struct {
	// TxID is generated when empty.
	TxID      string
	Sender    string
	Recipient string
	Amount    model.Amount
	Fee       model.Amount
}

// NewTransfer selects the sender's confirmed outputs, in outpoint order and
// skipping any already claimed by spent, until amount plus fee is covered. The
// transaction pays amount to the recipient and any remainder back to the sender.
// Spending unconfirmed outputs is not supported: they are not in the store yet.
func NewTransfer(ctx context.Context, store UtxoLister, spent validator.SpentChecker, req TransferRequest) (*model.Transaction, error) {
	if req.Sender == "" || req.Recipient == "" {
		return nil, errors.NewInvalidArgumentError("[Wallet] sender and recipient are required")
	}

	if req.Amount <= 0 {
		return nil, errors.NewInvalidArgumentError("[Wallet] amount must be positive, got %s", req.Amount)
	}

	if req.Fee < 0 {
		return nil, errors.NewInvalidArgumentError("[Wallet] fee must not be negative, got %s", req.Fee)
	}

	if store == nil {
		return nil, errors.NewInvalidArgumentError("[Wallet] utxo store is nil")
	}

	txID := req.TxID
	if txID == "" {
		txID = NewTxID()
	}

	needed, ok := req.Amount.CheckedAdd(req.Fee)
	if !ok {
		return nil, errors.NewInvalidArgumentError("[Wallet][%s] amount %s plus fee %s overflows", txID, req.Amount, req.Fee)
	}

	available := store.UtxosOf(ctx, req.Sender)
	model.SortOwnedUTXOs(available)

	// remaining counts down so large outputs cannot overflow a running sum
	remaining := needed

	var inputs []model.TxInput

	for _, u := range available {
		if remaining <= 0 {
			break
		}

		if u.Amount <= 0 || (spent != nil && spent.IsSpent(u.Outpoint)) {
			continue
		}

		inputs = append(inputs, model.TxInput{TxID: u.Outpoint.TxID, Index: u.Outpoint.Index, Owner: req.Sender})
		remaining -= u.Amount
	}

	if remaining > 0 {
		return nil, errors.NewInsufficientFundsError("[Wallet][%s] %s has %s spendable, needs %s", txID, req.Sender, needed-remaining, needed)
	}

	outputs := []model.TxOutput{{Amount: req.Amount, Recipient: req.Recipient}}

	if change := -remaining; change > 0 {
		outputs = append(outputs, model.TxOutput{Amount: change, Recipient: req.Sender})
	}

	return model.NewTransaction(txID, inputs, outputs), nil
}

// NewTxID returns a random transaction id.
func NewTxID() string {
	return "tx_" + uuid.NewString()
}
