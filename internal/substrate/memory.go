package substrate

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/polykv/polykv-go/internal/status"
)

type memItem struct {
	key   []byte
	value []byte
}

func memLess(a, b memItem) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// memoryEngine is an ordered, in-process substrate backed by one
// copy-on-write B-tree per collection. Cloning a btree.BTreeG is O(1) and
// lazily copy-on-write, which is what makes Snapshot cheap here: a
// snapshot just clones the map of tree roots, and neither the snapshot
// nor later writers pay a copy until they actually touch a shared node.
type memoryEngine struct {
	mu    sync.RWMutex
	trees map[uint64]*btree.BTreeG[memItem]

	// readOnly marks a handle returned by Snapshot: writes are rejected
	// rather than silently mutating what a caller expects to be frozen.
	readOnly bool
}

// NewMemory creates an empty in-memory substrate.
func NewMemory() Engine {
	return &memoryEngine{trees: make(map[uint64]*btree.BTreeG[memItem])}
}

func (e *memoryEngine) Capabilities() Capabilities {
	return Capabilities{
		NativeCollections: true,
		NativeSnapshots:   true,
	}
}

// SizeBytes implements Sizer by summing each collection's key/value
// bytes. This walks every tree under the read lock, so it is cheap
// enough for a periodic metrics scrape but not for a request hot path.
func (e *memoryEngine) SizeBytes() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var total int64
	for _, t := range e.trees {
		t.Ascend(func(item memItem) bool {
			total += int64(len(item.key) + len(item.value))
			return true
		})
	}
	return total
}

func (e *memoryEngine) treeFor(collection uint64, create bool) *btree.BTreeG[memItem] {
	t, ok := e.trees[collection]
	if !ok {
		if !create {
			return nil
		}
		t = btree.NewG(32, memLess)
		e.trees[collection] = t
	}
	return t
}

func (e *memoryEngine) Get(_ context.Context, collection uint64, key []byte) ([]byte, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t := e.treeFor(collection, false)
	if t == nil {
		return nil, false, nil
	}
	item, ok := t.Get(memItem{key: key})
	if !ok {
		return nil, false, nil
	}
	return item.value, true, nil
}

func (e *memoryEngine) Set(_ context.Context, collection uint64, key, value []byte) error {
	if e.readOnly {
		return status.New(status.InvalidArgument, "cannot write through a read-only snapshot")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.treeFor(collection, true)
	t.ReplaceOrInsert(memItem{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
}

func (e *memoryEngine) Delete(_ context.Context, collection uint64, key []byte) error {
	if e.readOnly {
		return status.New(status.InvalidArgument, "cannot write through a read-only snapshot")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.treeFor(collection, false)
	if t == nil {
		return nil
	}
	t.Delete(memItem{key: key})
	return nil
}

func (e *memoryEngine) Scan(_ context.Context, collection uint64, start []byte, fn func(key, value []byte) bool) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t := e.treeFor(collection, false)
	if t == nil {
		return nil
	}
	t.AscendGreaterOrEqual(memItem{key: start}, func(item memItem) bool {
		return fn(item.key, item.value)
	})
	return nil
}

func (e *memoryEngine) DropCollection(_ context.Context, collection uint64) error {
	if e.readOnly {
		return status.New(status.InvalidArgument, "cannot write through a read-only snapshot")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.trees, collection)
	return nil
}

func (e *memoryEngine) WriteBatch(_ context.Context, writes []BatchWrite) error {
	if e.readOnly {
		return status.New(status.InvalidArgument, "cannot write through a read-only snapshot")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, w := range writes {
		if w.Value == nil {
			if t := e.treeFor(w.Collection, false); t != nil {
				t.Delete(memItem{key: w.Key})
			}
			continue
		}
		t := e.treeFor(w.Collection, true)
		t.ReplaceOrInsert(memItem{key: append([]byte(nil), w.Key...), value: append([]byte(nil), w.Value...)})
	}
	return nil
}

// Snapshot clones every collection's tree root (O(1) per tree; the
// underlying nodes are shared and copy-on-write until a future writer on
// either side touches them) and returns a read-only handle over the
// clones.
func (e *memoryEngine) Snapshot(_ context.Context) (Engine, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	clone := &memoryEngine{
		trees:    make(map[uint64]*btree.BTreeG[memItem], len(e.trees)),
		readOnly: true,
	}
	for id, t := range e.trees {
		clone.trees[id] = t.Clone()
	}
	return clone, nil
}

func (e *memoryEngine) Close() error { return nil }
