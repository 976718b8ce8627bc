package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")
	require.NotNil(t, err)
	require.Equal(t, ERR_NOT_FOUND, err.Code())
	require.Equal(t, "resource not found", err.Message())

	secondErr := New(ERR_INVALID_ARGUMENT, "[Mempool][%s] failed to add: ", "_test_string_", err)
	thirdErr := New(ERR_MEMPOOL_CONFLICT, "[Mempool][%s] conflict: ", "_test_string_", secondErr)
	anotherErr := New(ERR_MEMPOOL_CONFLICT, "another conflict")
	fourthErr := New(ERR_PROCESSING, "older error: ", thirdErr)
	fifthErr := New(ERR_POOL_FULL, "pool full", fourthErr)

	require.True(t, anotherErr.Is(thirdErr))
	require.True(t, fourthErr.Is(New(ERR_MEMPOOL_CONFLICT, "")))
	require.True(t, fourthErr.Is(ErrMempoolConflict))

	require.True(t, fourthErr.Is(err))
	require.True(t, fifthErr.Is(thirdErr))
	require.True(t, fifthErr.Is(err))

	require.False(t, anotherErr.Is(fourthErr))
	require.False(t, fifthErr.Is(ErrAlreadyPooled))
}

func Test_FmtErrorCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")

	fmtError := fmt.Errorf("error: %w", err)
	secondErr := New(ERR_INVALID_ARGUMENT, "[Validator][%s] failed: ", "_test_string_", fmtError)
	require.NotNil(t, secondErr)

	// the fmt wrapper hides the code from the recursive code check
	require.False(t, secondErr.Is(err))

	// but the standard library still finds it through Unwrap
	require.True(t, errors.Is(secondErr, ErrNotFound))
}

func TestMessageFormatting(t *testing.T) {
	err := New(ERR_UTXO_NOT_FOUND, "utxo %s:%d does not exist", "genesis", 3)
	assert.Equal(t, "utxo genesis:3 does not exist", err.Message())
	assert.Contains(t, err.Error(), "UTXO_NOT_FOUND")
	assert.Nil(t, err.Unwrap())
}

func TestNilWrappedError(t *testing.T) {
	var cause *Error

	err := New(ERR_STORAGE_ERROR, "read %s failed", "genesis:0", cause)
	assert.Equal(t, "read genesis:0 failed", err.Message())
	assert.Nil(t, err.Unwrap())
}

func TestInvalidCode(t *testing.T) {
	err := New(ERR(9999), "whatever")
	assert.Equal(t, "invalid error code", err.Message())
	assert.Equal(t, "ERR(9999)", ERR(9999).String())
}

func TestNilError(t *testing.T) {
	var err *Error

	assert.Equal(t, "<nil>", err.Error())
	assert.Equal(t, ERR_UNKNOWN, err.Code())
	assert.False(t, err.Is(ErrNotFound))
	assert.Nil(t, err.Unwrap())
}

func TestIsWithStdlib(t *testing.T) {
	err := NewPoolFullError("mempool full (need > %d sat)", 100)

	assert.True(t, errors.Is(err, ErrPoolFull))
	assert.True(t, Is(err, ErrPoolFull))
	assert.False(t, errors.Is(err, ErrAlreadyPooled))
	assert.Equal(t, ERR_POOL_FULL, CodeOf(err))
	assert.Equal(t, ERR_UNKNOWN, CodeOf(errors.New("plain")))
}

func TestAs(t *testing.T) {
	inner := NewUtxoSpentInMempoolError("spent")
	err := New(ERR_MEMPOOL_CONFLICT, "conflict", inner)

	var target *Error
	require.True(t, As(err, &target))
	assert.Equal(t, ERR_MEMPOOL_CONFLICT, target.Code())
}

func TestMempoolConflictData(t *testing.T) {
	inner := NewUtxoSpentInMempoolError("utxo (genesis, 0) already spent")
	err := NewMempoolConflictError("tx_first", "utxo already spent in mempool by %s", "tx_first", inner)

	require.True(t, errors.Is(err, ErrMempoolConflict))
	require.True(t, errors.Is(err, ErrUtxoSpentInMempool))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "tx_first", e.GetData("conflicting_tx_id"))

	var data *ErrData
	require.True(t, As(err, &data))
	assert.Equal(t, "tx_first", data.GetData("conflicting_tx_id"))
	assert.Contains(t, err.Error(), "Data: conflicting_tx_id=tx_first")
}

func TestIsPlainTarget(t *testing.T) {
	plain := errors.New("utxo store unavailable")
	err := NewStorageError("read failed", plain)

	// plain targets are only matched by identity, through Unwrap
	assert.True(t, errors.Is(err, plain))
	assert.False(t, errors.Is(err, errors.New("utxo store unavailable")))
	assert.False(t, err.(*Error).Is(nil))
}

func TestParseERR(t *testing.T) {
	code, ok := ParseERR("INSUFFICIENT_FUNDS")
	require.True(t, ok)
	assert.Equal(t, ERR_INSUFFICIENT_FUNDS, code)

	_, ok = ParseERR("NOPE")
	assert.False(t, ok)
}

func TestErrorString(t *testing.T) {
	inner := NewUtxoNotFoundError("utxo genesis:0 does not exist")
	err := New(ERR_STORAGE_ERROR, "read failed", inner)

	assert.Equal(t, "Error: STORAGE_ERROR (error code: 6), Message: read failed, Wrapped err: "+inner.Error(), err.Error())
}
