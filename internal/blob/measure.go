package blob

import (
	"bytes"
	"context"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/view"
)

// Range is a best-effort [Min, Max] estimate; substrates are not required
// to report exact values.
type Range struct {
	Min, Max uint64
}

// MeasureResult holds the three estimate pairs Measure reports per task.
type MeasureResult struct {
	Cardinality Range
	ValueBytes  Range
	SpaceUsage  Range
}

// Measure reports best-effort cardinality, value-byte-size, and
// space-usage estimates for the key range [startKeys[i], endKeys[i]) in
// collections[i]. No substrate in this implementation reports true
// statistics, so every task's estimate is computed by an exact scan
// instead of a sampled one; the Range it returns always has Min == Max
// because the scan visits every matching key. A substrate that can
// answer more cheaply (e.g. from compacted SSTable metadata) would
// return a genuinely wider interval here.
func Measure(
	ctx context.Context,
	eng substrate.Engine,
	collections view.Column[uint64],
	startKeys, endKeys view.Column[[]byte],
) ([]MeasureResult, *status.Status) {
	n := collections.Len()
	if startKeys.Len() != n || endKeys.Len() != n {
		return nil, status.New(status.InvalidArgument, "collections, start_keys and end_keys must have matching task counts")
	}

	out := make([]MeasureResult, n)
	for i := 0; i < n; i++ {
		c := collections.At(i)
		start := startKeys.At(i)
		end := endKeys.At(i)

		var count, valueBytes uint64
		err := eng.Scan(ctx, c, start, func(key, value []byte) bool {
			if end != nil && bytes.Compare(key, end) >= 0 {
				return false
			}
			count++
			valueBytes += uint64(len(value))
			return true
		})
		if err != nil {
			return nil, status.Wrap(status.Substrate, err)
		}

		spaceUsage := valueBytes + count*8 // rough per-key overhead estimate
		out[i] = MeasureResult{
			Cardinality: Range{Min: count, Max: count},
			ValueBytes:  Range{Min: valueBytes, Max: valueBytes},
			SpaceUsage:  Range{Min: spaceUsage, Max: spaceUsage},
		}
	}
	return out, nil
}
