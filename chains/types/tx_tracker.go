package types

import (
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/Technova-K02/eth-monitor/types"
)

const (
	DefaultDedupCapacity  = 1024
	DefaultPendingTimeout = 10 * time.Minute
)

// PendingRecord exists only for transactions first observed unconfirmed.
type PendingRecord struct {
	Hash        string
	FirstSeenAt time.Time
}

// TxTracker is the per-watcher transaction state machine:
//
//	unseen -> pending-notified -> confirmed-notified (terminal)
//	                           -> expired            (terminal)
//
// A (hash, status) pair is reported at most once. The processed set is a
// capped, oldest-first-evicted key set; under sustained volume a very old
// re-seen hash can bypass dedup, which is accepted since a false duplicate is
// less harmful than a missed notification.
//
// All methods are called from a single watcher event loop, so no locking is
// needed.
type TxTracker struct {
	pending   map[string]*PendingRecord
	processed *lru.Cache
	timeout   time.Duration

	nowFn func() time.Time
}

func NewTxTracker(capacity int, timeout time.Duration) *TxTracker {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	if timeout <= 0 {
		timeout = DefaultPendingTimeout
	}

	return &TxTracker{
		pending:   make(map[string]*PendingRecord),
		processed: lru.New(capacity),
		timeout:   timeout,
		nowFn:     time.Now,
	}
}

// MarkPending records an unconfirmed sighting of hash. It returns true exactly
// once per hash, on the unseen -> pending-notified transition. A hash that
// already reached a terminal state stays silent.
func (t *TxTracker) MarkPending(hash string) bool {
	if t.seen(dedupKey(hash, types.StatusPending)) || t.seen(dedupKey(hash, types.StatusConfirmed)) {
		return false
	}

	t.processed.Add(dedupKey(hash, types.StatusPending), true)
	t.pending[hash] = &PendingRecord{
		Hash:        hash,
		FirstSeenAt: t.nowFn(),
	}

	return true
}

// MarkConfirmed records a confirmed sighting of hash, with or without a prior
// pending sighting. It returns true exactly once per hash.
func (t *TxTracker) MarkConfirmed(hash string) bool {
	if t.seen(dedupKey(hash, types.StatusConfirmed)) {
		return false
	}

	t.processed.Add(dedupKey(hash, types.StatusConfirmed), true)
	delete(t.pending, hash)

	return true
}

// Sweep evicts pending records older than the timeout and returns their
// hashes. Expired hashes are also recorded as confirmed in the processed set
// so a late confirmation is not treated as a fresh first sighting.
func (t *TxTracker) Sweep() []string {
	now := t.nowFn()
	expired := make([]string, 0)

	for hash, record := range t.pending {
		if now.Sub(record.FirstSeenAt) >= t.timeout {
			expired = append(expired, hash)
			t.processed.Add(dedupKey(hash, types.StatusConfirmed), true)
			delete(t.pending, hash)
		}
	}

	return expired
}

func (t *TxTracker) PendingCount() int {
	return len(t.pending)
}

func (t *TxTracker) seen(key string) bool {
	_, ok := t.processed.Get(key)
	return ok
}

func dedupKey(hash string, status types.TransferStatus) string {
	return hash + "|" + string(status)
}
