package snapshot

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/pkg/cmap"
)

// ID is an opaque handle identifying a snapshot.
type ID string

type entry struct {
	mu       sync.Mutex
	engine   substrate.Engine
	refCount int
}

// Manager creates, retains, and releases substrate snapshots.
type Manager struct {
	source    substrate.Engine
	snapshots *cmap.Map[ID, *entry]
}

// NewManager returns a Manager taking snapshots of source. source must
// implement substrate.Snapshotter; a substrate that does not is a
// programming error at wiring time, not a runtime condition a caller can
// hit, so callers should check once at startup.
func NewManager(source substrate.Engine) (*Manager, *status.Status) {
	if _, ok := source.(substrate.Snapshotter); !ok {
		return nil, status.New(status.NotImplemented, "substrate does not support snapshots")
	}
	return &Manager{source: source, snapshots: cmap.New[ID, *entry]()}, nil
}

// Create takes a new snapshot of the current substrate state, returning
// its id with a reference count of 1.
func (m *Manager) Create(ctx context.Context) (ID, *status.Status) {
	eng, err := m.source.(substrate.Snapshotter).Snapshot(ctx)
	if err != nil {
		return "", status.Wrap(status.Substrate, err)
	}

	id := ID(ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String())
	m.snapshots.Set(id, &entry{engine: eng, refCount: 1})
	return id, nil
}

// Retain increments a snapshot's reference count, keeping it alive for
// one more caller (e.g. a transaction started against it).
func (m *Manager) Retain(id ID) *status.Status {
	e, ok := m.snapshots.Get(id)
	if !ok {
		return status.ErrUnknownSnapshot
	}
	e.mu.Lock()
	e.refCount++
	e.mu.Unlock()
	return nil
}

// Engine returns the substrate.Engine view pinned by id.
func (m *Manager) Engine(id ID) (substrate.Engine, *status.Status) {
	e, ok := m.snapshots.Get(id)
	if !ok {
		return nil, status.ErrUnknownSnapshot
	}
	return e.engine, nil
}

// Release decrements id's reference count, closing and forgetting the
// snapshot once it reaches zero. Releasing an unknown id is a no-op.
func (m *Manager) Release(id ID) *status.Status {
	e, ok := m.snapshots.Get(id)
	if !ok {
		return nil
	}

	e.mu.Lock()
	e.refCount--
	dead := e.refCount <= 0
	e.mu.Unlock()

	if !dead {
		return nil
	}

	m.snapshots.Delete(id)
	if err := e.engine.Close(); err != nil {
		return status.Wrap(status.Substrate, err)
	}
	return nil
}

// List returns every currently live snapshot id.
func (m *Manager) List() []ID {
	return m.snapshots.Keys()
}
