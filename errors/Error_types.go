package errors

var (
	ErrUnknown         = New(ERR_UNKNOWN, "unknown error")
	ErrInvalidArgument = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrNotFound        = New(ERR_NOT_FOUND, "not found")
	ErrProcessing      = New(ERR_PROCESSING, "error processing")
	ErrConfiguration   = New(ERR_CONFIGURATION, "configuration error")
	ErrError           = New(ERR_ERROR, "generic error")
	ErrStorageError    = New(ERR_STORAGE_ERROR, "storage error")

	ErrInvalidAmount = New(ERR_INVALID_AMOUNT, "utxo amount must be positive")

	ErrEmptyInputs          = New(ERR_EMPTY_INPUTS, "transaction has no inputs")
	ErrEmptyOutputs         = New(ERR_EMPTY_OUTPUTS, "transaction has no outputs")
	ErrDoubleSpendWithinTx  = New(ERR_DOUBLE_SPEND_WITHIN_TX, "utxo spent twice in the same transaction")
	ErrUtxoNotFound         = New(ERR_UTXO_NOT_FOUND, "utxo does not exist")
	ErrOwnerMismatch        = New(ERR_OWNER_MISMATCH, "input owner does not match utxo owner")
	ErrUtxoSpentInMempool   = New(ERR_UTXO_SPENT_IN_MEMPOOL, "utxo already spent in unconfirmed transaction")
	ErrNonPositiveOutput    = New(ERR_NON_POSITIVE_OUTPUT, "output amount must be positive")
	ErrInsufficientFunds    = New(ERR_INSUFFICIENT_FUNDS, "insufficient input balance")
	ErrAlreadyPooled        = New(ERR_ALREADY_POOLED, "transaction already in mempool")
	ErrPoolFull             = New(ERR_POOL_FULL, "mempool full and transaction fee too low")
	ErrMempoolConflict      = New(ERR_MEMPOOL_CONFLICT, "utxo already spent in mempool")
	ErrMiningRollback       = New(ERR_MINING_ROLLBACK, "block assembly rolled back")
)

// errors initialization functions

func NewUnknownError(message string, params ...interface{}) error {
	return New(ERR_UNKNOWN, message, params...)
}
func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewNotFoundError(message string, params ...interface{}) error {
	return New(ERR_NOT_FOUND, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewError(message string, params ...interface{}) error {
	return New(ERR_ERROR, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
func NewInvalidAmountError(message string, params ...interface{}) error {
	return New(ERR_INVALID_AMOUNT, message, params...)
}
func NewEmptyInputsError(message string, params ...interface{}) error {
	return New(ERR_EMPTY_INPUTS, message, params...)
}
func NewEmptyOutputsError(message string, params ...interface{}) error {
	return New(ERR_EMPTY_OUTPUTS, message, params...)
}
func NewDoubleSpendWithinTxError(message string, params ...interface{}) error {
	return New(ERR_DOUBLE_SPEND_WITHIN_TX, message, params...)
}
func NewUtxoNotFoundError(message string, params ...interface{}) error {
	return New(ERR_UTXO_NOT_FOUND, message, params...)
}
func NewOwnerMismatchError(message string, params ...interface{}) error {
	return New(ERR_OWNER_MISMATCH, message, params...)
}
func NewUtxoSpentInMempoolError(message string, params ...interface{}) error {
	return New(ERR_UTXO_SPENT_IN_MEMPOOL, message, params...)
}
func NewNonPositiveOutputError(message string, params ...interface{}) error {
	return New(ERR_NON_POSITIVE_OUTPUT, message, params...)
}
func NewInsufficientFundsError(message string, params ...interface{}) error {
	return New(ERR_INSUFFICIENT_FUNDS, message, params...)
}
func NewAlreadyPooledError(message string, params ...interface{}) error {
	return New(ERR_ALREADY_POOLED, message, params...)
}
func NewPoolFullError(message string, params ...interface{}) error {
	return New(ERR_POOL_FULL, message, params...)
}

// NewMempoolConflictError returns a conflict error that records the id of the
// pooled transaction which first claimed the utxo.
func NewMempoolConflictError(conflictingTxID string, message string, params ...interface{}) error {
	err := New(ERR_MEMPOOL_CONFLICT, message, params...)
	err.SetData("conflicting_tx_id", conflictingTxID)

	return err
}
func NewMiningRollbackError(message string, params ...interface{}) error {
	return New(ERR_MINING_ROLLBACK, message, params...)
}
