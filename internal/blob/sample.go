package blob

import (
	"context"
	"math/rand"

	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/view"
)

// Sample returns up to countLimits[i] keys drawn uniformly at random from
// collections[i], using Vitter's Algorithm R: a single pass over the
// collection with a reservoir of size countLimits[i], replacing a random
// reservoir slot with decreasing probability as more keys are seen.
// Results are unordered and, for collections smaller than the limit,
// simply contain every key.
func Sample(
	ctx context.Context,
	eng substrate.Engine,
	rng *rand.Rand,
	collections view.Column[uint64],
	countLimits view.Column[uint32],
) (*ScanResult, *status.Status) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	n := collections.Len()
	if countLimits.Len() != n {
		return nil, status.New(status.InvalidArgument, "collections and count_limits must have matching task counts")
	}

	counts := make([]uint32, n)
	tape := view.NewTape(n, 0)

	for i := 0; i < n; i++ {
		c := collections.At(i)
		limit := int(countLimits.At(i))

		reservoir := make([][]byte, 0, limit)
		var seen int
		err := eng.Scan(ctx, c, nil, func(key, _ []byte) bool {
			k := append([]byte(nil), key...)
			if len(reservoir) < limit {
				reservoir = append(reservoir, k)
			} else if limit > 0 {
				j := rng.Intn(seen + 1)
				if j < limit {
					reservoir[j] = k
				}
			}
			seen++
			return true
		})
		if err != nil {
			return nil, status.Wrap(status.Substrate, err)
		}

		for _, k := range reservoir {
			tape.Append(k)
		}
		counts[i] = uint32(len(reservoir))
	}

	return &ScanResult{Offsets: tape.Offsets(), Counts: counts, Keys: tape.Values()}, nil
}
