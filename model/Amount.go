package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bsv-blockchain/ledgersim/errors"
)

// SatoshisPerBitcoin is the number of satoshis in one coin.
const SatoshisPerBitcoin = 100_000_000

const amountDecimals = 8

// Amount is a value in satoshis. All ledger arithmetic is done on integers so
// transfers conserve value exactly.
type Amount int64

// NewAmountFromBTC converts a coin value to satoshis, rounding to the nearest satoshi.
func NewAmountFromBTC(btc float64) (Amount, error) {
	if math.IsNaN(btc) || math.IsInf(btc, 0) {
		return 0, errors.NewInvalidArgumentError("invalid coin value %v", btc)
	}

	sat := math.Round(btc * SatoshisPerBitcoin)
	if sat > math.MaxInt64 || sat < math.MinInt64 {
		return 0, errors.NewInvalidArgumentError("coin value %v out of range", btc)
	}

	return Amount(sat), nil
}

// MustBTC is NewAmountFromBTC for constants known to be valid.
func MustBTC(btc float64) Amount {
	a, err := NewAmountFromBTC(btc)
	if err != nil {
		panic(err)
	}

	return a
}

// ParseAmount parses a decimal coin value such as "39.999" exactly, without going
// through a float. At most 8 fractional digits are accepted.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.NewInvalidArgumentError("empty amount")
	}

	negative := false

	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && (!hasDot || frac == "") {
		return 0, errors.NewInvalidArgumentError("invalid amount %q", s)
	}

	if len(frac) > amountDecimals {
		return 0, errors.NewInvalidArgumentError("amount %q has more than %d decimals", s, amountDecimals)
	}

	if whole == "" {
		whole = "0"
	}

	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, errors.NewInvalidArgumentError("invalid amount %q", s)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.NewInvalidArgumentError("invalid amount %q", s, err)
	}

	var f int64

	if frac != "" {
		f, err = strconv.ParseInt(frac+strings.Repeat("0", amountDecimals-len(frac)), 10, 64)
		if err != nil {
			return 0, errors.NewInvalidArgumentError("invalid amount %q", s, err)
		}
	}

	if w > (math.MaxInt64-f)/SatoshisPerBitcoin {
		return 0, errors.NewInvalidArgumentError("amount %q out of range", s)
	}

	sat := w*SatoshisPerBitcoin + f
	if negative {
		sat = -sat
	}

	return Amount(sat), nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// CheckedAdd returns a+b and false if the sum does not fit in an Amount.
func (a Amount) CheckedAdd(b Amount) (Amount, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}

	return sum, true
}

// BTC returns the value in coins. Only for display.
func (a Amount) BTC() float64 {
	return float64(a) / SatoshisPerBitcoin
}

// String formats the amount in coins with 8 decimals, e.g. "39.99900000".
func (a Amount) String() string {
	sign := ""
	v := int64(a)

	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%08d", sign, v/SatoshisPerBitcoin, v%SatoshisPerBitcoin)
}
