// Package mempool holds validated, unconfirmed transactions waiting to be mined.
//
// The pool keeps a spent index of every outpoint claimed by a pooled transaction,
// so two pooled transactions can never spend the same output. The first
// transaction seen wins; later claimants are rejected with ERR_MEMPOOL_CONFLICT.
// When the pool is at capacity a new transaction must pay a strictly higher fee
// than the cheapest pooled transaction, which is then evicted. The fee test comes
// first, judged from the store, so a full pool answers ERR_POOL_FULL to any
// transaction that does not outbid the cheapest one, valid or not.
package mempool

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/services/validator"
	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/ulogger"
)

const defaultMaxSize = 50

type Mempool struct {
	logger    ulogger.Logger
	settings  *settings.Settings
	validator validator.Interface
	maxSize   int

	mu    sync.RWMutex
	txs   map[string]*entry
	spent spentIndex
	seq   uint64
}

// New creates an empty mempool holding at most tSettings.Mempool.MaxSize transactions.
func New(logger ulogger.Logger, tSettings *settings.Settings, v validator.Interface) *Mempool {
	initPrometheusMetrics()

	maxSize := tSettings.Mempool.MaxSize
	if maxSize <= 0 {
		logger.Warnf("[Mempool] invalid max size %d, using %d", maxSize, defaultMaxSize)
		maxSize = defaultMaxSize
	}

	if v == nil {
		v = validator.New(logger)
	}

	return &Mempool{
		logger:    logger,
		settings:  tSettings,
		validator: v,
		maxSize:   maxSize,
		txs:       make(map[string]*entry),
		spent:     make(spentIndex),
	}
}

// MaxSize returns the capacity of the pool.
func (m *Mempool) MaxSize() int {
	return m.maxSize
}

// Add validates tx against store and the pool and inserts it. A nil error means
// the transaction was accepted and its inputs are now claimed; any other result
// leaves the pool untouched except for a fee based eviction that preceded a
// successful insert.
func (m *Mempool) Add(ctx context.Context, tx *model.Transaction, store utxo.Reader) error {
	if tx == nil {
		return errors.NewInvalidArgumentError("[Mempool] transaction is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.add(ctx, tx, store)
	if err != nil {
		prometheusMempoolRejected.WithLabelValues(errors.CodeOf(err).String()).Inc()
		m.logger.Debugf("[Mempool][%s] rejected: %v", tx.ID, err)

		return err
	}

	prometheusMempoolAccepted.Inc()
	prometheusMempoolSize.Set(float64(len(m.txs)))

	m.logger.Debugf("[Mempool][%s] accepted with fee %s, pool size %d", tx.ID, tx.Fee, len(m.txs))

	return nil
}

func (m *Mempool) add(ctx context.Context, tx *model.Transaction, store utxo.Reader) error {
	if _, ok := m.txs[tx.ID]; ok {
		return errors.NewAlreadyPooledError("[Mempool][%s] transaction already in mempool", tx.ID)
	}

	var victim *entry

	spent := validator.SpentChecker(m.spent)

	if len(m.txs) >= m.maxSize {
		victim = m.minFeeEntry()

		if offered := offeredFee(ctx, tx, store); offered <= victim.tx.Fee {
			return errors.NewPoolFullError("[Mempool][%s] mempool full (%d) and fee %s does not exceed minimum %s", tx.ID, m.maxSize, offered, victim.tx.Fee)
		}

		// validated as if the victim were gone, so a rejected candidate never
		// costs the pool a transaction
		spent = exceptTx{spent: m.spent, txID: victim.tx.ID}
	}

	fee, err := m.validator.Validate(ctx, tx, store, spent)
	if err != nil {
		return m.conflictError(tx, err)
	}

	if victim != nil {
		if fee <= victim.tx.Fee {
			return errors.NewPoolFullError("[Mempool][%s] mempool full (%d) and fee %s does not exceed minimum %s", tx.ID, m.maxSize, fee, victim.tx.Fee)
		}

		m.remove(victim.tx.ID)
		prometheusMempoolEvicted.Inc()

		m.logger.Infof("[Mempool][%s] evicted (fee %s) for %s (fee %s)", victim.tx.ID, victim.tx.Fee, tx.ID, fee)
	}

	for _, in := range tx.Inputs {
		key := in.Outpoint()
		if owner, ok := m.spent[key]; ok {
			return errors.NewMempoolConflictError(owner, "[Mempool][%s] utxo %s already claimed by %s", tx.ID, key, owner)
		}
	}

	m.seq++
	m.txs[tx.ID] = &entry{tx: tx, seq: m.seq}

	for _, in := range tx.Inputs {
		m.spent[in.Outpoint()] = tx.ID
	}

	return nil
}

// offeredFee is the fee tx would pay judged from the store alone: the stored
// amounts of its distinct existing inputs minus its positive outputs. For a valid
// transaction it equals the validated fee. Both sums saturate at the largest Amount.
func offeredFee(ctx context.Context, tx *model.Transaction, store utxo.Reader) model.Amount {
	if store == nil {
		return 0
	}

	var (
		in, out model.Amount
		ok      bool
	)

	seen := make(map[model.Outpoint]struct{}, len(tx.Inputs))

	for _, input := range tx.Inputs {
		key := input.Outpoint()
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		amount, err := store.AmountOf(ctx, key)
		if err != nil || amount <= 0 {
			continue
		}

		if in, ok = in.CheckedAdd(amount); !ok {
			in = math.MaxInt64
		}
	}

	for _, output := range tx.Outputs {
		if output.Amount <= 0 {
			continue
		}

		if out, ok = out.CheckedAdd(output.Amount); !ok {
			out = math.MaxInt64
		}
	}

	return in - out
}

// conflictError reports a mempool double spend as a conflict naming the pooled
// transaction that claimed the utxo first.
func (m *Mempool) conflictError(tx *model.Transaction, err error) error {
	if errors.CodeOf(err) != errors.ERR_UTXO_SPENT_IN_MEMPOOL {
		return err
	}

	for _, in := range tx.Inputs {
		key := in.Outpoint()
		if owner, ok := m.spent[key]; ok {
			return errors.NewMempoolConflictError(owner, "[Mempool][%s] utxo %s already spent by pooled transaction %s", tx.ID, key, owner, err)
		}
	}

	return err
}

// minFeeEntry returns the cheapest entry, the earliest inserted on ties. The pool
// must not be empty.
func (m *Mempool) minFeeEntry() *entry {
	var lowest *entry

	for _, e := range m.txs {
		if lowest == nil || e.tx.Fee < lowest.tx.Fee || (e.tx.Fee == lowest.tx.Fee && e.seq < lowest.seq) {
			lowest = e
		}
	}

	return lowest
}

// Remove drops a transaction and releases its claims. It reports whether the
// transaction was pooled.
func (m *Mempool) Remove(txID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ok := m.remove(txID)
	if ok {
		prometheusMempoolSize.Set(float64(len(m.txs)))
	}

	return ok
}

func (m *Mempool) remove(txID string) bool {
	e, ok := m.txs[txID]
	if !ok {
		return false
	}

	for _, in := range e.tx.Inputs {
		key := in.Outpoint()
		if m.spent[key] == txID {
			delete(m.spent, key)
		}
	}

	delete(m.txs, txID)

	return true
}

func (m *Mempool) Get(txID string) (*model.Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.txs[txID]
	if !ok {
		return nil, false
	}

	return e.tx, true
}

// Top returns up to n transactions by descending fee, equal fees in insertion order.
func (m *Mempool) Top(n int) []*model.Transaction {
	if n <= 0 {
		return nil
	}

	m.mu.RLock()
	entries := m.entries()
	m.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].tx.Fee > entries[j].tx.Fee
	})

	if n > len(entries) {
		n = len(entries)
	}

	txs := make([]*model.Transaction, 0, n)
	for _, e := range entries[:n] {
		txs = append(txs, e.tx)
	}

	return txs
}

// Transactions returns all pooled transactions in insertion order.
func (m *Mempool) Transactions() []*model.Transaction {
	m.mu.RLock()
	entries := m.entries()
	m.mu.RUnlock()

	txs := make([]*model.Transaction, 0, len(entries))
	for _, e := range entries {
		txs = append(txs, e.tx)
	}

	return txs
}

// entries returns the pool in insertion order, the caller must hold the lock.
func (m *Mempool) entries() []*entry {
	entries := make([]*entry, 0, len(m.txs))
	for _, e := range m.txs {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	return entries
}

// IsSpent reports whether a pooled transaction claims key. Mempool satisfies
// validator.SpentChecker.
func (m *Mempool) IsSpent(key model.Outpoint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.spent.IsSpent(key)
}

// SpentBy returns the id of the pooled transaction claiming key.
func (m *Mempool) SpentBy(key model.Outpoint) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txID, ok := m.spent[key]

	return txID, ok
}

func (m *Mempool) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.txs)
}

// Clear empties the pool and the spent index.
func (m *Mempool) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txs = make(map[string]*entry)
	m.spent = make(spentIndex)

	prometheusMempoolSize.Set(0)

	m.logger.Infof("[Mempool] cleared")
}

func (m *Mempool) Statistics() Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats Statistics

	for _, e := range m.txs {
		fee := e.tx.Fee

		if stats.Count == 0 || fee > stats.MaxFee {
			stats.MaxFee = fee
		}

		if stats.Count == 0 || fee < stats.MinFee {
			stats.MinFee = fee
		}

		stats.Count++
		stats.TotalFee += fee
	}

	if stats.Count > 0 {
		stats.AverageFee = stats.TotalFee / model.Amount(stats.Count)
	}

	return stats
}
