package blob

import (
	"context"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/txn"
	"github.com/polykv/polykv-go/internal/view"
)

// MissingLength is the sentinel lengths[i] value for an absent key.
const MissingLength = 0xFFFFFFFF

// ReadOptions controls one batched read.
type ReadOptions struct {
	// DontWatch skips recording a watch-set entry for a transactional
	// read, matching transaction_dont_watch: the caller intends to
	// overwrite unconditionally and does not want this read to be able
	// to conflict a later commit.
	DontWatch bool
	// WithValues requests the values tape and its offsets be populated;
	// when false, only presences and lengths are computed (a presence-only
	// probe) and Offsets and Values are left nil.
	WithValues bool
}

// ReadResult is the output of a batched read: any subset of its fields
// may be consulted depending on ReadOptions.
type ReadResult struct {
	Presence view.Presence
	Offsets  []uint32
	Lengths  []uint32
	Values   []byte
}

// Read looks up (collections[i], keys[i]) for every task. At most one of
// tx or snap may be supplied; tx, if given, is consulted first (its
// write-set, then its pinned read view if any, else the live substrate),
// and its watch-set is updated per ReadOptions.DontWatch. snap, if given
// without tx, is read directly with no watch-set bookkeeping.
func Read(
	ctx context.Context,
	eng substrate.Engine,
	tx *txn.Txn,
	snap substrate.Engine,
	collections view.Column[uint64],
	keys view.Column[[]byte],
	opts ReadOptions,
) (*ReadResult, *status.Status) {
	if tx != nil && snap != nil {
		return nil, status.ErrBothTransactionAndSnapshot
	}

	n := collections.Len()
	if keys.Len() != n {
		return nil, status.Newf(status.InvalidArgument,
			"collections has %d tasks, keys has %d", n, keys.Len())
	}

	presence := newPresenceBuilder(n)
	lengths := make([]uint32, n)
	tape := view.NewTape(n, 0)

	for i := 0; i < n; i++ {
		c := collections.At(i)
		k := keys.At(i)

		var (
			value []byte
			found bool
		)

		switch {
		case tx != nil:
			if v, isDelete, staged := tx.WriteSetValue(c, k); staged {
				if !isDelete {
					value, found = v, true
				}
			} else {
				var st *status.Status
				if opts.DontWatch {
					value, found, st = tx.GetNoWatch(ctx, c, k)
				} else {
					value, found, st = tx.Get(ctx, c, k)
				}
				if st != nil {
					return nil, st
				}
			}
		case snap != nil:
			var err error
			value, found, err = snap.Get(ctx, c, k)
			if err != nil {
				return nil, status.Wrap(status.Substrate, err)
			}
		default:
			var err error
			value, found, err = eng.Get(ctx, c, k)
			if err != nil {
				return nil, status.Wrap(status.Substrate, err)
			}
		}

		if found {
			presence.set(i)
			lengths[i] = uint32(len(value))
			if opts.WithValues {
				tape.Append(value)
			}
		} else {
			lengths[i] = MissingLength
			if opts.WithValues {
				tape.Append(nil)
			}
		}
	}

	result := &ReadResult{
		Presence: view.NewPresence(presence.bits()),
		Lengths:  lengths,
	}
	if opts.WithValues {
		result.Offsets = tape.Offsets()
		result.Values = tape.Values()
	}
	return result, nil
}
