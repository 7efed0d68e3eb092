package substrate

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Capabilities reports which higher-level conveniences a substrate
// implements natively. A substrate that reports false for a capability
// still works correctly: the layer above degrades to a generic
// implementation (e.g. a key-prefix scheme for named collections, or an
// optimistic-concurrency layer atop plain reads and batched writes).
type Capabilities struct {
	// NativeCollections means the substrate can address independent,
	// separately-iterable keyspaces without the caller prefixing keys.
	NativeCollections bool
	// NativeTransactions means the substrate itself detects read/write
	// conflicts across concurrent transactions.
	NativeTransactions bool
	// NativeSnapshots means the substrate can hand back a consistent,
	// long-lived read view cheaply (e.g. an MVCC read timestamp) rather
	// than requiring a full copy.
	NativeSnapshots bool
}

// Pair is one key/value entry yielded by a Scan.
type Pair struct {
	Key   []byte
	Value []byte
}

// Engine is the minimum substrate contract: ordered get/set/delete/scan
// over (collection, key) -> value, where collection is an opaque numeric
// handle assigned by the collection registry (collection 0 is always the
// main collection).
type Engine interface {
	Capabilities() Capabilities

	// Get returns the value for key in collection, and false if absent.
	Get(ctx context.Context, collection uint64, key []byte) ([]byte, bool, error)

	// Set stores value for key in collection, creating collection's
	// keyspace implicitly if this is its first key.
	Set(ctx context.Context, collection uint64, key, value []byte) error

	// Delete removes key from collection. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, collection uint64, key []byte) error

	// Scan visits every key in collection in ascending order starting at
	// or after start (start == nil means "from the beginning"), calling
	// fn for each. Scan stops early if fn returns false.
	Scan(ctx context.Context, collection uint64, start []byte, fn func(key, value []byte) bool) error

	// DropCollection removes every key belonging to collection.
	DropCollection(ctx context.Context, collection uint64) error

	// Close releases the substrate's resources.
	Close() error
}

// BatchWriter is an optional extension for substrates that can apply a
// set of writes atomically. Engines that do not implement it fall back
// to sequential Set/Delete calls under the transaction manager's own
// commit-serialization lock.
type BatchWriter interface {
	// WriteBatch applies every write in order; a write with Value == nil
	// is a delete.
	WriteBatch(ctx context.Context, writes []BatchWrite) error
}

// BatchWrite is one write within a WriteBatch call.
type BatchWrite struct {
	Collection uint64
	Key        []byte
	Value      []byte // nil means delete
}

// Snapshotter is an optional extension for substrates that can hand back
// a consistent read-only view cheaper than copying all data.
type Snapshotter interface {
	// Snapshot returns an Engine pinned to the current state; writes made
	// through the original Engine after Snapshot returns must not be
	// visible through it. The caller must Close the returned Engine when
	// done (this releases the pinned view, not the underlying substrate).
	Snapshot(ctx context.Context) (Engine, error)
}

// Sizer is an optional extension for substrates that can report their
// own footprint cheaply, for exposition as a metrics gauge.
type Sizer interface {
	// SizeBytes reports the substrate's approximate size in bytes.
	SizeBytes() int64
}

// CollectorSource is an optional extension for substrates that maintain
// their own Prometheus collectors (e.g. gauges refreshed by a background
// loop rather than sampled on demand).
type CollectorSource interface {
	Collectors() []prometheus.Collector
}
