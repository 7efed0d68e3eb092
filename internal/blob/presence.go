package blob

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/polykv/polykv-go/internal/view"
)

// roaringThreshold is the batch size at or above which an output presence
// bitmap is built as a compressed roaring bitmap instead of a plain
// bit-packed slice; below it, the bit-slice's lower constant overhead
// wins. Mirrors the teacher's practice of picking a data structure by
// workload size rather than always reaching for the fancier one.
const roaringThreshold = 256

// presenceBuilder accumulates an output presence bitmap across a batch,
// choosing its internal representation by batch size.
type presenceBuilder struct {
	small *view.PresenceBuilder
	big   *roaring.Bitmap
	n     int
}

func newPresenceBuilder(n int) *presenceBuilder {
	if n >= roaringThreshold {
		return &presenceBuilder{big: roaring.New(), n: n}
	}
	return &presenceBuilder{small: view.NewPresenceBuilder(n), n: n}
}

func (p *presenceBuilder) set(i int) {
	if p.big != nil {
		p.big.Add(uint32(i))
		return
	}
	p.small.Set(i)
}

// bits returns the packed, bit-per-task presence bitmap regardless of
// which internal representation was used, so callers downstream (e.g.
// view.Presence) never need to know which path was taken.
func (p *presenceBuilder) bits() []byte {
	if p.small != nil {
		return p.small.Bits()
	}
	out := make([]byte, (p.n+7)/8)
	it := p.big.Iterator()
	for it.HasNext() {
		i := it.Next()
		out[i/8] |= 1 << (i % 8)
	}
	return out
}
