// Package arena provides the caller-owned scratch memory that every
// batched polykv operation writes its outputs into.
//
// An Arena is a bump allocator over a linked list of chunks: each
// allocation just advances an offset into the current chunk, and a new
// chunk is appended only when the current one runs out of room. Callers
// reuse the same Arena across many calls; by default each call resets the
// arena before writing, but a caller can opt out (DontDiscardMemory) to
// keep results from prior calls alive alongside new ones.
package arena

import "github.com/polykv/polykv-go/internal/status"

// DefaultChunkSize is the size of the first chunk allocated, and the
// minimum size of any chunk appended afterward.
const DefaultChunkSize = 64 << 10 // 64KiB

// chunk is one contiguous block of scratch memory.
type chunk struct {
	buf  []byte
	used int
}

func (c *chunk) remaining() int {
	return len(c.buf) - c.used
}

// Arena is a growable, caller-owned bump allocator. It is not safe for
// concurrent use; each caller (thread, goroutine, request) owns its own.
type Arena struct {
	chunkSize int
	chunks    []*chunk
	cur       int // index of the chunk currently being allocated from
}

// New creates an Arena with the default chunk size.
func New() *Arena {
	return NewSized(DefaultChunkSize)
}

// NewSized creates an Arena whose chunks grow in increments of at least
// chunkSize bytes.
func NewSized(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Arena{chunkSize: chunkSize}
}

// Reset discards all prior allocations, retaining the underlying chunks
// for reuse. This is the default behavior on entry to every batched
// operation unless DontDiscardMemory is set.
func (a *Arena) Reset() {
	for _, c := range a.chunks {
		c.used = 0
	}
	a.cur = 0
}

// Release returns all chunks to the runtime. The Arena stays usable:
// a later Alloc allocates fresh chunks as needed.
func (a *Arena) Release() {
	a.chunks = nil
	a.cur = 0
}

// Alloc returns a zeroed byte slice of length n whose backing array is
// owned by the arena. The returned slice is valid until the next Reset or
// Release on the same Arena.
func (a *Arena) Alloc(n int) []byte {
	if n == 0 {
		return nil
	}
	c := a.chunkFor(n)
	b := c.buf[c.used : c.used+n : c.used+n]
	c.used += n
	clear(b) // chunks reused after Reset still hold earlier bytes
	return b
}

// AllocInt64s returns an arena-owned []int64 of the given length.
func AllocInt64s(a *Arena, n int) []int64 {
	if n == 0 {
		return nil
	}
	raw := a.Alloc(n * 8)
	return bytesToInt64Slice(raw)
}

// AllocUint32s returns an arena-owned []uint32 of the given length.
func AllocUint32s(a *Arena, n int) []uint32 {
	if n == 0 {
		return nil
	}
	raw := a.Alloc(n * 4)
	return bytesToUint32Slice(raw)
}

// Append copies b into the arena and returns the arena-owned copy.
func (a *Arena) Append(b []byte) []byte {
	if len(b) == 0 {
		return a.Alloc(0)
	}
	dst := a.Alloc(len(b))
	copy(dst, b)
	return dst
}

// chunkFor returns a chunk with at least n bytes of remaining capacity,
// appending a new chunk if none of the existing ones have room.
func (a *Arena) chunkFor(n int) *chunk {
	for a.cur < len(a.chunks) {
		if a.chunks[a.cur].remaining() >= n {
			return a.chunks[a.cur]
		}
		a.cur++
	}

	size := a.chunkSize
	if n > size {
		size = n
	}
	c := &chunk{buf: make([]byte, size)}
	a.chunks = append(a.chunks, c)
	a.cur = len(a.chunks) - 1
	return c
}

// Stats reports the Arena's current memory footprint.
type Stats struct {
	Chunks       int
	TotalBytes   int
	UsedBytes    int
}

// Stats returns the Arena's current chunk/usage counters.
func (a *Arena) Stats() Stats {
	s := Stats{Chunks: len(a.chunks)}
	for _, c := range a.chunks {
		s.TotalBytes += len(c.buf)
		s.UsedBytes += c.used
	}
	return s
}

// CheckedAlloc behaves like Alloc but returns an out-of-memory Status
// instead of allocating when n exceeds maxReasonable (a maxReasonable of
// 0 or less disables the limit) — guards against a corrupt length column driving a runaway allocation.
func (a *Arena) CheckedAlloc(n int, maxReasonable int) ([]byte, *status.Status) {
	if n < 0 {
		return nil, status.New(status.InvalidArgument, "negative allocation length")
	}
	if maxReasonable > 0 && n > maxReasonable {
		return nil, status.Newf(status.OutOfMemory, "allocation of %d bytes exceeds arena limit %d", n, maxReasonable)
	}
	return a.Alloc(n), nil
}
