package utxo

import (
	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
)

// CheckAmount enforces that no zero or negative output can ever enter a store.
func CheckAmount(key model.Outpoint, amount model.Amount) error {
	if amount <= 0 {
		return errors.NewInvalidAmountError("utxo %s amount must be positive, got %s", key, amount)
	}

	return nil
}

// AddToSupply returns supply plus amount. Adding an output that would push the total
// supply past the largest Amount fails with ERR_INVALID_AMOUNT, which keeps every
// balance and supply sum of a store exact.
func AddToSupply(key model.Outpoint, supply, amount model.Amount) (model.Amount, error) {
	total, ok := supply.CheckedAdd(amount)
	if !ok {
		return 0, errors.NewInvalidAmountError("utxo %s amount %s overflows total supply %s", key, amount, supply)
	}

	return total, nil
}

func NewNotFoundError(key model.Outpoint) error {
	return errors.NewNotFoundError("utxo %s not found", key)
}
