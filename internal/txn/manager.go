package txn

import (
	"bytes"
	"context"
	"sync"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
)

// State is a transaction's lifecycle stage.
type State int

const (
	StateActive State = iota
	StateStaged
	StateCommitted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateStaged:
		return "staged"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type keyRef struct {
	collection uint64
	key        string
}

type writeVal struct {
	value    []byte
	isDelete bool
	isDrop   bool
}

// Manager owns the substrate a set of transactions are layered on top
// of, plus the per-key generation bookkeeping every transaction
// validates against at commit time.
type Manager struct {
	mu         sync.RWMutex
	eng        substrate.Engine
	keyGen     map[keyRef]uint64
	generation uint64
}

// NewManager returns a Manager serializing commits against eng.
func NewManager(eng substrate.Engine) *Manager {
	return &Manager{eng: eng, keyGen: make(map[keyRef]uint64)}
}

// Engine returns the substrate the manager serializes commits against,
// for callers (the blob layer's non-transactional write path) that need
// the raw engine for a capability check such as flushing.
func (m *Manager) Engine() substrate.Engine {
	return m.eng
}

// Generation returns the current global commit-serialization counter. A
// successful commit with at least one staged write increments it once;
// Seed can raise it to a recovered generation.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Begin starts a new active transaction. readView, if non-nil, pins
// every read the transaction performs to a consistent snapshot; if nil,
// reads observe the live substrate as of each individual Get call
// (still tracked in the watch-set for conflict detection at commit).
func (m *Manager) Begin(readView substrate.Engine) *Txn {
	eng := readView
	if eng == nil {
		eng = m.eng
	}
	return &Txn{
		mgr:     m,
		readEng: eng,
		state:   StateActive,
		watches: make(map[keyRef]uint64),
		writes:  make(map[keyRef]writeVal),
	}
}

// Txn is a single optimistic-concurrency transaction.
type Txn struct {
	mgr     *Manager
	readEng substrate.Engine

	mu           sync.Mutex
	state        State
	watches      map[keyRef]uint64
	writes       map[keyRef]writeVal
	committedGen uint64
}

// State returns the transaction's current lifecycle stage.
func (t *Txn) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ReadView returns the substrate view this transaction reads through:
// its pinned snapshot if it was begun against one, otherwise the live
// substrate. Scans use this directly since a full write-set merge is
// unnecessary for a range scan (per-key watches are established lazily
// by subsequent point reads, same as a scan over any other engine).
func (t *Txn) ReadView() substrate.Engine {
	return t.readEng
}

func (t *Txn) requireActive() *status.Status {
	if t.state != StateActive {
		return status.ErrTransactionNotActive
	}
	return nil
}

// Get reads a key, preferring the transaction's own uncommitted write-set
// (read-your-writes) and otherwise falling through to the read view,
// recording the key's generation-at-read the first time it is observed.
func (t *Txn) Get(ctx context.Context, collection uint64, key []byte) ([]byte, bool, *status.Status) {
	return t.get(ctx, collection, key, true)
}

// GetNoWatch reads exactly like Get but never records a watch-set entry,
// matching transaction_dont_watch: the caller intends to overwrite
// unconditionally and does not want this read able to conflict a later
// commit.
func (t *Txn) GetNoWatch(ctx context.Context, collection uint64, key []byte) ([]byte, bool, *status.Status) {
	return t.get(ctx, collection, key, false)
}

func (t *Txn) get(ctx context.Context, collection uint64, key []byte, watch bool) ([]byte, bool, *status.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st := t.requireActive(); st != nil {
		return nil, false, st
	}

	ref := keyRef{collection: collection, key: string(key)}
	if w, ok := t.writes[ref]; ok {
		if w.isDelete || w.isDrop {
			return nil, false, nil
		}
		return w.value, true, nil
	}

	t.mgr.mu.RLock()
	value, found, err := t.readEng.Get(ctx, collection, key)
	gen := t.mgr.keyGen[ref]
	t.mgr.mu.RUnlock()

	if err != nil {
		return nil, false, status.Wrap(status.Substrate, err)
	}

	if watch {
		if _, watched := t.watches[ref]; !watched {
			t.watches[ref] = gen
		}
	}
	return value, found, nil
}

// Set stages a write-set entry; it is not visible to other transactions
// until Commit succeeds.
func (t *Txn) Set(collection uint64, key, value []byte) *status.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.requireActive(); st != nil {
		return st
	}
	ref := keyRef{collection: collection, key: string(key)}
	t.writes[ref] = writeVal{value: append([]byte(nil), value...)}
	return nil
}

// Delete stages a tombstone write-set entry.
func (t *Txn) Delete(collection uint64, key []byte) *status.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.requireActive(); st != nil {
		return st
	}
	ref := keyRef{collection: collection, key: string(key)}
	t.writes[ref] = writeVal{isDelete: true}
	return nil
}

// Watch adds key to the watch-set without reading it, so a later commit
// fails if some other transaction changes it in the meantime — used by
// the blob/document/graph layers to express "serialize with writers of
// this key" without needing the value itself.
func (t *Txn) Watch(collection uint64, key []byte) *status.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.requireActive(); st != nil {
		return st
	}
	ref := keyRef{collection: collection, key: string(key)}
	if _, ok := t.watches[ref]; ok {
		return nil
	}
	t.mgr.mu.RLock()
	gen := t.mgr.keyGen[ref]
	t.mgr.mu.RUnlock()
	t.watches[ref] = gen
	return nil
}

// Stage validates the watch-set against the current generation table
// without applying anything, surfacing a conflict early. It is optional:
// Commit performs the same validation (against the state at commit time)
// regardless of whether Stage was called first.
func (t *Txn) Stage() *status.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.requireActive(); st != nil {
		return st
	}

	t.mgr.mu.RLock()
	st := t.validateLocked()
	t.mgr.mu.RUnlock()
	if st != nil {
		return st
	}

	t.state = StateStaged
	return nil
}

// validateLocked must be called with mgr.mu held (read lock suffices for
// Stage; Commit re-validates under the write lock).
func (t *Txn) validateLocked() *status.Status {
	for ref, seenGen := range t.watches {
		if cur := t.mgr.keyGen[ref]; cur != seenGen {
			return status.ErrConflict
		}
	}
	return nil
}

// Commit re-validates the watch-set and, if nothing watched has changed,
// applies the write-set atomically under one new generation. On
// conflict, the transaction moves to Aborted and nothing is applied; Reset
// clears its state so the same Txn can be reused for a retry.
func (t *Txn) Commit(ctx context.Context) *status.Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateActive && t.state != StateStaged {
		return status.ErrTransactionNotActive
	}

	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()

	if st := t.validateLocked(); st != nil {
		t.state = StateAborted
		return st
	}

	if len(t.writes) == 0 {
		t.state = StateCommitted
		return nil
	}

	newGen := t.mgr.generation + 1

	if bw, ok := t.mgr.eng.(substrate.BatchWriter); ok {
		batch := make([]substrate.BatchWrite, 0, len(t.writes))
		var drops []uint64
		for ref, w := range t.writes {
			if w.isDrop {
				drops = append(drops, ref.collection)
				continue
			}
			bw2 := substrate.BatchWrite{Collection: ref.collection, Key: []byte(ref.key)}
			if !w.isDelete {
				bw2.Value = w.value
			}
			batch = append(batch, bw2)
		}
		for _, c := range drops {
			if err := t.mgr.eng.DropCollection(ctx, c); err != nil {
				t.state = StateAborted
				return status.Wrap(status.Substrate, err)
			}
		}
		if len(batch) > 0 {
			if err := bw.WriteBatch(ctx, batch); err != nil {
				t.state = StateAborted
				return status.Wrap(status.Substrate, err)
			}
		}
	} else {
		for ref, w := range t.writes {
			var err error
			switch {
			case w.isDrop:
				err = t.mgr.eng.DropCollection(ctx, ref.collection)
			case w.isDelete:
				err = t.mgr.eng.Delete(ctx, ref.collection, []byte(ref.key))
			default:
				err = t.mgr.eng.Set(ctx, ref.collection, []byte(ref.key), w.value)
			}
			if err != nil {
				t.state = StateAborted
				return status.Wrap(status.Substrate, err)
			}
		}
	}

	for ref := range t.writes {
		t.mgr.keyGen[ref] = newGen
	}
	t.mgr.generation = newGen
	t.committedGen = newGen
	t.state = StateCommitted
	return nil
}

// Abort discards the transaction's watch-set and write-set without
// touching the substrate.
func (t *Txn) Abort() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateAborted
	t.writes = nil
	t.watches = nil
}

// Reset discards the accumulated watch-set and write-set and returns the
// transaction to Active, letting a caller retry after a conflict without
// allocating a new Txn (and, for a snapshot-bound transaction, without
// taking a fresh snapshot).
func (t *Txn) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateActive
	t.writes = make(map[keyRef]writeVal)
	t.watches = make(map[keyRef]uint64)
}

// Free releases the transaction; a committed or aborted Txn is already
// inert, so this only exists for symmetry with arena/collection/snapshot
// handle lifecycles and to make forgetting to Commit/Abort a harmless
// no-op instead of a leak a caller has to reason about.
func (t *Txn) Free() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes = nil
	t.watches = nil
}

// ScanWriteSet returns every key staged in collection falling in
// [start, end) (end == nil means unbounded), alongside whether that
// staged write is a tombstone. Order is not defined.
func (t *Txn) ScanWriteSet(collection uint64, start, end []byte) []WriteSetKey {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []WriteSetKey
	for ref, w := range t.writes {
		if ref.collection != collection {
			continue
		}
		k := []byte(ref.key)
		if start != nil && bytes.Compare(k, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(k, end) >= 0 {
			continue
		}
		out = append(out, WriteSetKey{Key: k, IsDelete: w.isDelete || w.isDrop})
	}
	return out
}

// WriteSetKey is one entry returned by ScanWriteSet.
type WriteSetKey struct {
	Key      []byte
	IsDelete bool
}

// WriteSetValue exposes a staged write for collection/key for callers
// (the blob layer's Read) that need to know whether a key is
// locally written, deleted, or untouched by this transaction.
func (t *Txn) WriteSetValue(collection uint64, key []byte) (value []byte, isDelete, isStaged bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.writes[keyRef{collection: collection, key: string(key)}]
	if !ok {
		return nil, false, false
	}
	return w.value, w.isDelete, true
}

// CommittedWrite is one mutation applied by a successful Commit, in the
// shape a redo log wants to persist it.
type CommittedWrite struct {
	Collection uint64
	Key        []byte
	Value      []byte
	IsDelete   bool
	IsDrop     bool
	Generation uint64
}

// CommittedWrites returns every write this transaction applied, valid
// only once State() == StateCommitted. A caller journaling transactions
// for crash recovery (internal/db) calls this right after Commit
// succeeds, since the transaction itself is the only place that knows
// which generation the writes landed at.
func (t *Txn) CommittedWrites() []CommittedWrite {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateCommitted {
		return nil
	}
	out := make([]CommittedWrite, 0, len(t.writes))
	for ref, w := range t.writes {
		out = append(out, CommittedWrite{
			Collection: ref.collection,
			Key:        []byte(ref.key),
			Value:      w.value,
			IsDelete:   w.isDelete,
			IsDrop:     w.isDrop,
			Generation: t.committedGen,
		})
	}
	return out
}

// Seed primes the manager's generation table for a key without going
// through a transaction, used during WAL replay to make a recovered
// key's generation match what it was before the crash so a transaction
// that read it pre-crash cannot spuriously look stale.
func (m *Manager) Seed(collection uint64, key []byte, generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := keyRef{collection: collection, key: string(key)}
	m.keyGen[ref] = generation
	if generation > m.generation {
		m.generation = generation
	}
}
