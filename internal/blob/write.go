package blob

import (
	"context"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/txn"
	"github.com/polykv/polykv-go/internal/view"
)

// WriteOptions controls one batched write.
type WriteOptions struct {
	// Flush, when set and there is no transaction, asks the substrate to
	// force a durability barrier before Write returns.
	Flush bool
}

// flusher is an optional substrate extension forcing pending writes to
// stable storage. For substrates that don't implement it, Flush is a
// no-op and adds no durability barrier.
type flusher interface {
	Flush(ctx context.Context) error
}

// Write applies one value (or a delete, when presences[i] is 0 or values
// is nil for task i) per task. Task i's byte range is
// values[offsets[i] : offsets[i]+lengths[i]]; when lengths is empty it is
// derived from offsets, and when offsets is also empty from
// NUL-termination, via view.SliceAt.
//
// With a transaction, every task is staged into its write-set and the
// substrate is not touched until the transaction commits. Without one,
// the batch is staged into a transaction this call begins and commits
// itself, so it is applied atomically as a single substrate batch and
// still advances mgr's per-key generation table — a concurrent watching
// transaction committing around this write conflicts exactly as it would
// around an explicit one.
func Write(
	ctx context.Context,
	mgr *txn.Manager,
	tx *txn.Txn,
	collections view.Column[uint64],
	keys view.Column[[]byte],
	presences view.Presence,
	offsets, lengths view.Column[uint32],
	values []byte,
	opts WriteOptions,
) *status.Status {
	n := collections.Len()
	if keys.Len() != n {
		return status.Newf(status.InvalidArgument,
			"collections has %d tasks, keys has %d", n, keys.Len())
	}

	type op struct {
		collection uint64
		key        []byte
		value      []byte
		isDelete   bool
	}
	ops := make([]op, n)
	for i := 0; i < n; i++ {
		c := collections.At(i)
		k := keys.At(i)

		present := presences.At(i) && values != nil
		if !present {
			ops[i] = op{collection: c, key: k, isDelete: true}
			continue
		}
		ops[i] = op{collection: c, key: k, value: view.SliceAt(values, offsets, lengths, i)}
	}

	active := tx
	implicit := active == nil
	if implicit {
		active = mgr.Begin(nil)
	}

	for _, o := range ops {
		var st *status.Status
		if o.isDelete {
			st = active.Delete(o.collection, o.key)
		} else {
			st = active.Set(o.collection, o.key, o.value)
		}
		if st != nil {
			if implicit {
				active.Abort()
			}
			return st
		}
	}

	if !implicit {
		return nil
	}

	if st := active.Commit(ctx); st != nil {
		return st
	}

	if opts.Flush {
		if f, ok := mgr.Engine().(flusher); ok {
			if err := f.Flush(ctx); err != nil {
				return status.Wrap(status.Substrate, err)
			}
		}
	}
	return nil
}
