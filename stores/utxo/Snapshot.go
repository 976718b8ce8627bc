package utxo

import (
	"math"

	"github.com/bsv-blockchain/ledgersim/model"
)

// Snapshot is a read-only copy of a store's content. A snapshot never changes
// after creation, so it can be shared freely between a store and its callers.
type Snapshot struct {
	entries map[model.Outpoint]model.Entry
}

// NewSnapshot wraps entries. The caller hands over ownership and must not
// modify the map afterwards.
func NewSnapshot(entries map[model.Outpoint]model.Entry) *Snapshot {
	if entries == nil {
		entries = map[model.Outpoint]model.Entry{}
	}

	return &Snapshot{entries: entries}
}

// Entries exposes the underlying map to store backends. It must be treated as read-only.
func (s *Snapshot) Entries() map[model.Outpoint]model.Entry {
	return s.entries
}

func (s *Snapshot) Len() int {
	return len(s.entries)
}

func (s *Snapshot) Get(key model.Outpoint) (model.Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Supply sums the entries, failing with ERR_INVALID_AMOUNT if the sum overflows.
// Snapshots taken from a store never do.
func (s *Snapshot) Supply() (model.Amount, error) {
	var (
		total model.Amount
		err   error
	)

	for k, e := range s.entries {
		if total, err = AddToSupply(k, total, e.Amount); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// TotalSupply is Supply, saturated at the largest Amount.
func (s *Snapshot) TotalSupply() model.Amount {
	total, err := s.Supply()
	if err != nil {
		return math.MaxInt64
	}

	return total
}

// ForEach visits entries in outpoint order until fn returns false.
func (s *Snapshot) ForEach(fn func(key model.Outpoint, entry model.Entry) bool) {
	keys := make([]model.Outpoint, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}

	model.SortOutpoints(keys)

	for _, k := range keys {
		if !fn(k, s.entries[k]) {
			return
		}
	}
}

// Equal reports whether both snapshots hold exactly the same entries.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}

	if len(s.entries) != len(other.entries) {
		return false
	}

	for k, e := range s.entries {
		o, ok := other.entries[k]
		if !ok || o != e {
			return false
		}
	}

	return true
}
