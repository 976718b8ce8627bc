package blockassembly

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CoinbaseIDFunc names the coinbase transaction of a block.
type CoinbaseIDFunc func(miner string, height uint32, timestamp time.Time) string

type Options struct {
	coinbaseID CoinbaseIDFunc
	now        func() time.Time
}

type Option func(*Options)

func NewDefaultOptions() *Options {
	return &Options{
		coinbaseID: DefaultCoinbaseID,
		now:        time.Now,
	}
}

func ProcessOptions(opts ...Option) *Options {
	options := NewDefaultOptions()
	for _, o := range opts {
		o(options)
	}

	return options
}

func WithCoinbaseIDFunc(fn CoinbaseIDFunc) Option {
	return func(o *Options) {
		o.coinbaseID = fn
	}
}

// WithClock replaces time.Now for block timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.now = now
	}
}

// DefaultCoinbaseID derives coinbase_<miner>_<height>_<uuid> where the uuid is a
// name based (SHA1) uuid of miner, height and timestamp.
func DefaultCoinbaseID(miner string, height uint32, timestamp time.Time) string {
	name := fmt.Sprintf("%s/%d/%d", miner, height, timestamp.UnixNano())

	return fmt.Sprintf("coinbase_%s_%d_%s", miner, height, uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)))
}
