/*
Package validator checks transactions against a UTXO store and the set of outputs
already claimed by pooled transactions.

Validation is a pure check. It never changes the store or the claimed set; the
only side effect is that a valid transaction gets its Fee field set. Rules are
applied in a fixed order and the first failing rule decides the rejection reason:

 1. the transaction has at least one input (ERR_EMPTY_INPUTS)
 2. the transaction has at least one output (ERR_EMPTY_OUTPUTS)
 3. no outpoint is spent twice by the same transaction (ERR_DOUBLE_SPEND_WITHIN_TX)
 4. for each input in order: the outpoint exists (ERR_UTXO_NOT_FOUND), the claimed
    owner matches the stored owner (ERR_OWNER_MISMATCH) and the outpoint is not
    claimed by a pooled transaction (ERR_UTXO_SPENT_IN_MEMPOOL)
 5. every output amount is positive (ERR_NON_POSITIVE_OUTPUT)
 6. inputs cover outputs (ERR_INSUFFICIENT_FUNDS); outputs whose sum overflows
    an Amount can never be covered

The fee is the input sum minus the output sum and may be zero.
*/
package validator

import (
	"context"
	"time"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/ulogger"
)

// SpentChecker reports whether an outpoint is already claimed by a pooled transaction.
// The mempool implements it.
type SpentChecker interface {
	IsSpent(key model.Outpoint) bool
}

// Interface is what the mempool and the block assembler need from a validator.
type Interface interface {
	// Validate checks tx against store and spent and returns the fee.
	// A nil spent skips the mempool check, validating against confirmed state only.
	Validate(ctx context.Context, tx *model.Transaction, store utxo.Reader, spent SpentChecker, opts ...Option) (model.Amount, error)
}

// Validator is the default Interface implementation.
type Validator struct {
	logger ulogger.Logger
}

// New creates a Validator. The logger is used at debug level only, rejections are
// returned to the caller rather than logged.
func New(logger ulogger.Logger) *Validator {
	initPrometheusMetrics()

	return &Validator{
		logger: logger,
	}
}

var defaultValidator = &Validator{logger: ulogger.TestLogger{}}

// Validate runs the rules with a validator that does not log.
func Validate(ctx context.Context, tx *model.Transaction, store utxo.Reader, spent SpentChecker, opts ...Option) (model.Amount, error) {
	initPrometheusMetrics()

	return defaultValidator.Validate(ctx, tx, store, spent, opts...)
}

// Validate implements Interface. On success tx.Fee is set to the returned fee.
func (v *Validator) Validate(ctx context.Context, tx *model.Transaction, store utxo.Reader, spent SpentChecker, opts ...Option) (model.Amount, error) {
	start := time.Now()

	options := ProcessOptions(opts...)
	if options.skipMempoolCheck {
		spent = nil
	}

	fee, err := v.validate(ctx, tx, store, spent)

	prometheusValidatorValidate.Observe(time.Since(start).Seconds())

	if err != nil {
		prometheusValidatorRejected.WithLabelValues(errors.CodeOf(err).String()).Inc()

		if tx != nil {
			v.logger.Debugf("[Validator][%s] rejected: %v", tx.ID, err)
		}

		return 0, err
	}

	prometheusValidatorValidated.Inc()

	tx.Fee = fee

	v.logger.Debugf("[Validator][%s] valid, fee %s", tx.ID, fee)

	return fee, nil
}

func (v *Validator) validate(ctx context.Context, tx *model.Transaction, store utxo.Reader, spent SpentChecker) (model.Amount, error) {
	if tx == nil {
		return 0, errors.NewInvalidArgumentError("[Validator] transaction is nil")
	}

	if store == nil {
		return 0, errors.NewInvalidArgumentError("[Validator][%s] utxo store is nil", tx.ID)
	}

	if len(tx.Inputs) == 0 {
		return 0, errors.NewEmptyInputsError("[Validator][%s] transaction has no inputs", tx.ID)
	}

	if len(tx.Outputs) == 0 {
		return 0, errors.NewEmptyOutputsError("[Validator][%s] transaction has no outputs", tx.ID)
	}

	// duplicates are detected before any store lookup
	seen := make(map[model.Outpoint]struct{}, len(tx.Inputs))

	for _, in := range tx.Inputs {
		key := in.Outpoint()
		if _, ok := seen[key]; ok {
			return 0, errors.NewDoubleSpendWithinTxError("[Validator][%s] utxo %s is spent more than once", tx.ID, key)
		}

		seen[key] = struct{}{}
	}

	var inputSum model.Amount

	for _, in := range tx.Inputs {
		key := in.Outpoint()

		entry, err := store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return 0, errors.NewUtxoNotFoundError("[Validator][%s] utxo %s does not exist", tx.ID, key, err)
			}

			return 0, errors.NewStorageError("[Validator][%s] failed to read utxo %s", tx.ID, key, err)
		}

		if entry.Owner != in.Owner {
			return 0, errors.NewOwnerMismatchError("[Validator][%s] utxo %s is owned by %q, input claims %q", tx.ID, key, entry.Owner, in.Owner)
		}

		if spent != nil && spent.IsSpent(key) {
			return 0, errors.NewUtxoSpentInMempoolError("[Validator][%s] utxo %s already spent in unconfirmed transaction", tx.ID, key)
		}

		var ok bool
		if inputSum, ok = inputSum.CheckedAdd(entry.Amount); !ok {
			return 0, errors.NewStorageError("[Validator][%s] input amounts overflow at utxo %s", tx.ID, key)
		}
	}

	for i, out := range tx.Outputs {
		if out.Amount <= 0 {
			return 0, errors.NewNonPositiveOutputError("[Validator][%s] output %d amount must be positive, got %s", tx.ID, i, out.Amount)
		}
	}

	// no input set can cover outputs whose sum does not even fit in an Amount
	outputSum, ok := tx.TotalOutput()
	if !ok {
		return 0, errors.NewInsufficientFundsError("[Validator][%s] output amounts overflow, inputs %s", tx.ID, inputSum)
	}

	if inputSum < outputSum {
		return 0, errors.NewInsufficientFundsError("[Validator][%s] inputs %s do not cover outputs %s", tx.ID, inputSum, outputSum)
	}

	return inputSum - outputSum, nil
}
