package errors

import "fmt"

// ERR identifies the kind of an Error. Scenario files refer to codes by name.
type ERR int32

const (
	ERR_UNKNOWN          ERR = 0
	ERR_INVALID_ARGUMENT ERR = 1
	ERR_NOT_FOUND        ERR = 2
	ERR_PROCESSING       ERR = 3
	ERR_CONFIGURATION    ERR = 4
	ERR_ERROR            ERR = 5
	ERR_STORAGE_ERROR    ERR = 6

	// utxo store
	ERR_INVALID_AMOUNT ERR = 20

	// transaction validation
	ERR_EMPTY_INPUTS           ERR = 30
	ERR_EMPTY_OUTPUTS          ERR = 31
	ERR_DOUBLE_SPEND_WITHIN_TX ERR = 32
	ERR_UTXO_NOT_FOUND         ERR = 33
	ERR_OWNER_MISMATCH         ERR = 34
	ERR_UTXO_SPENT_IN_MEMPOOL  ERR = 35
	ERR_NON_POSITIVE_OUTPUT    ERR = 36
	ERR_INSUFFICIENT_FUNDS     ERR = 37

	// mempool
	ERR_ALREADY_POOLED   ERR = 50
	ERR_POOL_FULL        ERR = 51
	ERR_MEMPOOL_CONFLICT ERR = 52

	// block assembly
	ERR_MINING_ROLLBACK ERR = 60
)

var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	2:  "NOT_FOUND",
	3:  "PROCESSING",
	4:  "CONFIGURATION",
	5:  "ERROR",
	6:  "STORAGE_ERROR",
	20: "INVALID_AMOUNT",
	30: "EMPTY_INPUTS",
	31: "EMPTY_OUTPUTS",
	32: "DOUBLE_SPEND_WITHIN_TX",
	33: "UTXO_NOT_FOUND",
	34: "OWNER_MISMATCH",
	35: "UTXO_SPENT_IN_MEMPOOL",
	36: "NON_POSITIVE_OUTPUT",
	37: "INSUFFICIENT_FUNDS",
	50: "ALREADY_POOLED",
	51: "POOL_FULL",
	52: "MEMPOOL_CONFLICT",
	60: "MINING_ROLLBACK",
}

var ERR_value = func() map[string]int32 {
	m := make(map[string]int32, len(ERR_name))
	for k, v := range ERR_name {
		m[v] = k
	}

	return m
}()

func (x ERR) String() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return fmt.Sprintf("ERR(%d)", int32(x))
}

// ParseERR returns the code registered under name.
func ParseERR(name string) (ERR, bool) {
	v, ok := ERR_value[name]
	return ERR(v), ok
}
