package collection

import (
	"context"
	"encoding/binary"

	"github.com/spaolacci/murmur3"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/pkg/cmap"
)

// Main is the reserved handle for the always-present default collection.
const Main uint64 = 0

// metaCollection stores the persisted name->id mapping; it lives outside
// the hash space any named collection can land in because every
// hashed/derived id has its top bit cleared.
const metaCollection uint64 = uint64(1) << 63

const reservedBit = uint64(1) << 63

// Registry resolves collection names to numeric handles, persisting the
// mapping in the substrate so it survives a restart.
type Registry struct {
	eng    substrate.Engine
	byName *cmap.Map[string, uint64]
	byID   *cmap.Map[uint64, string]
}

// Open loads the persisted collection mapping from eng and returns a
// ready Registry.
func Open(ctx context.Context, eng substrate.Engine) (*Registry, *status.Status) {
	r := &Registry{
		eng:    eng,
		byName: cmap.New[string, uint64](),
		byID:   cmap.New[uint64, string](),
	}

	err := eng.Scan(ctx, metaCollection, nil, func(key, value []byte) bool {
		name := string(key)
		id := binary.BigEndian.Uint64(value)
		r.byName.Set(name, id)
		r.byID.Set(id, name)
		return true
	})
	if err != nil {
		return nil, status.Wrapf(status.Substrate, err, "collection: load registry")
	}
	return r, nil
}

// Resolve returns the id for name, or ok=false if it has never been
// created.
func (r *Registry) Resolve(name string) (id uint64, ok bool) {
	if name == "" {
		return Main, true
	}
	return r.byName.Get(name)
}

// Name returns the name a collection id was created with, or "" for
// Main or an id this Registry does not recognize.
func (r *Registry) Name(id uint64) (string, bool) {
	if id == Main {
		return "", true
	}
	return r.byID.Get(id)
}

// Create assigns and persists a new collection id for name, or returns
// the existing id if name was already created.
func (r *Registry) Create(ctx context.Context, name string) (uint64, *status.Status) {
	if name == "" {
		return Main, nil
	}
	if id, ok := r.byName.Get(name); ok {
		return id, nil
	}

	id := deriveID(name)
	for probe := uint64(0); ; probe++ {
		if existing, ok := r.byID.Get(id); !ok || existing == name {
			break
		}
		id = deriveID(name) + probe + 1
		id &^= reservedBit
		if id == Main {
			id = 1
		}
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	if err := r.eng.Set(ctx, metaCollection, []byte(name), buf[:]); err != nil {
		return 0, status.Wrapf(status.Substrate, err, "collection: persist %q", name)
	}

	r.byName.Set(name, id)
	r.byID.Set(id, name)
	return id, nil
}

// DropMode selects how much of a collection Drop removes.
type DropMode int

const (
	// DropKeysValsHandle removes every key and value and the handle
	// itself; the name can be reused by a later Create, which derives the
	// id from the name again, so it gets the same id back unless another
	// collection has taken that id in the meantime.
	DropKeysValsHandle DropMode = iota
	// DropKeysVals removes every key and value but keeps the handle
	// registered, so the same id is still resolvable under name (now
	// empty) without a Create.
	DropKeysVals
	// DropVals keeps every key but truncates its value to zero length,
	// leaving the handle and key set untouched.
	DropVals
)

// Drop removes name's collection per mode: DropKeysValsHandle drops the
// handle itself, DropKeysVals empties the collection but keeps the
// handle resolvable, and DropVals keeps every key but zeroes its value.
func (r *Registry) Drop(ctx context.Context, name string, mode DropMode) *status.Status {
	if name == "" {
		return status.New(status.InvalidArgument, "cannot drop the main collection")
	}
	id, ok := r.byName.Get(name)
	if !ok {
		return status.Newf(status.InvalidArgument, "collection %q does not exist", name)
	}

	switch mode {
	case DropVals:
		var keys [][]byte
		if err := r.eng.Scan(ctx, id, nil, func(key, _ []byte) bool {
			keys = append(keys, append([]byte(nil), key...))
			return true
		}); err != nil {
			return status.Wrapf(status.Substrate, err, "collection: scan %q for value drop", name)
		}
		for _, key := range keys {
			if err := r.eng.Set(ctx, id, key, []byte{}); err != nil {
				return status.Wrapf(status.Substrate, err, "collection: zero value in %q", name)
			}
		}
		return nil

	case DropKeysVals:
		if err := r.eng.DropCollection(ctx, id); err != nil {
			return status.Wrapf(status.Substrate, err, "collection: drop contents of %q", name)
		}
		return nil

	default:
		if err := r.eng.DropCollection(ctx, id); err != nil {
			return status.Wrapf(status.Substrate, err, "collection: drop %q", name)
		}
		if err := r.eng.Delete(ctx, metaCollection, []byte(name)); err != nil {
			return status.Wrapf(status.Substrate, err, "collection: remove mapping for %q", name)
		}

		r.byName.Delete(name)
		r.byID.Delete(id)
		return nil
	}
}

// List returns every named (non-main) collection.
func (r *Registry) List() []string {
	return r.byName.Keys()
}

func deriveID(name string) uint64 {
	h := murmur3.Sum64([]byte(name))
	h &^= reservedBit
	if h == Main {
		h = 1
	}
	return h
}
