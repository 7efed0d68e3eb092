package blob

import (
	"context"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/txn"
	"github.com/polykv/polykv-go/internal/view"
)

// ScanOptions controls one batched range scan.
type ScanOptions struct {
	// Bulk relaxes ordering and uniqueness to maximize throughput;
	// callers must treat the result as a superset hint rather than an
	// exact listing. This implementation does not currently take a
	// different code path for Bulk (the substrate scan is already a
	// single ordered pass), but the flag is threaded through so a future
	// substrate that offers an unordered, higher-throughput iterator has
	// somewhere to plug in.
	Bulk bool
}

// ScanResult is the output of a batched range scan: Offsets has length
// tasks_count+1, Counts has length tasks_count, and Keys is a tape of the
// concatenated keys in task order.
type ScanResult struct {
	Offsets []uint32
	Counts  []uint32
	Keys    []byte
}

// Scan returns, for each task i, up to countLimits[i] keys ascending from
// startKeys[i] (inclusive) in collections[i]. At most one of tx or snap
// may be supplied. A transactional scan does not add every visited key to
// the watch set — the caller's subsequent point reads (via blob.Read)
// establish any watches it needs.
func Scan(
	ctx context.Context,
	eng substrate.Engine,
	tx *txn.Txn,
	snap substrate.Engine,
	collections view.Column[uint64],
	startKeys view.Column[[]byte],
	countLimits view.Column[uint32],
	_ ScanOptions,
) (*ScanResult, *status.Status) {
	if tx != nil && snap != nil {
		return nil, status.ErrBothTransactionAndSnapshot
	}

	n := collections.Len()
	if startKeys.Len() != n || countLimits.Len() != n {
		return nil, status.New(status.InvalidArgument, "collections, start_keys and count_limits must have matching task counts")
	}

	readEng := eng
	switch {
	case tx != nil:
		readEng = tx.ReadView()
	case snap != nil:
		readEng = snap
	}

	counts := make([]uint32, n)
	tape := view.NewTape(n, 0)

	for i := 0; i < n; i++ {
		c := collections.At(i)
		start := startKeys.At(i)
		limit := countLimits.At(i)

		var collected uint32
		err := readEng.Scan(ctx, c, start, func(key, _ []byte) bool {
			if collected >= limit {
				return false
			}
			tape.Append(key)
			collected++
			return collected < limit
		})
		if err != nil {
			return nil, status.Wrap(status.Substrate, err)
		}
		counts[i] = collected
	}

	return &ScanResult{Offsets: tape.Offsets(), Counts: counts, Keys: tape.Values()}, nil
}
