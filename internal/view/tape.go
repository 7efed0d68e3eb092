package view

// Tape accumulates a batch of variable-length byte results into a single
// concatenated buffer plus an Arrow-style offsets array: result i occupies
// Values[Offsets[i]:Offsets[i+1]]. This is the output-side counterpart of
// Column: every batched read returns one Tape rather than tasks_count
// separately-allocated slices, so the caller pays for one arena allocation
// per result tape instead of one per task.
type Tape struct {
	offsets []uint32
	values  []byte
}

// NewTape preallocates a Tape for the given task count and an estimate of
// the total bytes across all results; the estimate only sizes the initial
// backing buffer and is never required to be exact.
func NewTape(taskCount, estimatedBytes int) *Tape {
	t := &Tape{
		offsets: make([]uint32, 1, taskCount+1),
		values:  make([]byte, 0, estimatedBytes),
	}
	t.offsets[0] = 0
	return t
}

// Append adds one task's result and closes its offset. A nil result and
// a present-but-empty one are recorded identically, as a zero-length span.
func (t *Tape) Append(v []byte) {
	t.values = append(t.values, v...)
	t.offsets = append(t.offsets, uint32(len(t.values)))
}

// Offsets returns the Arrow-style offsets array, length len(results)+1.
func (t *Tape) Offsets() []uint32 { return t.offsets }

// Values returns the concatenated value bytes.
func (t *Tape) Values() []byte { return t.values }

// Len reports the number of results appended so far.
func (t *Tape) Len() int { return len(t.offsets) - 1 }

// At returns the i'th result's bytes as a view into Values (not a copy).
func (t *Tape) At(i int) []byte {
	return t.values[t.offsets[i]:t.offsets[i+1]]
}

// SliceAt derives the [start,length) byte range for index i directly from
// an input offsets/lengths pair, applying the documented fallback rules:
// a missing lengths column infers length from the next offset; a missing
// offsets column implies every entry starts at 0. This mirrors how a
// caller-supplied value tape (offsets+lengths over a shared values blob)
// is decoded into per-task byte ranges for write inputs.
func SliceAt(values []byte, offsets, lengths Column[uint32], i int) []byte {
	var start uint32
	if !offsets.IsEmpty() {
		start = offsets.At(i)
	}

	var length uint32
	switch {
	case !lengths.IsEmpty():
		length = lengths.At(i)
	case !offsets.IsEmpty() && i+1 < offsets.Len():
		length = offsets.At(i+1) - start
	default:
		// Neither offsets nor lengths supplied for this entry: treat the
		// value as a NUL-terminated string starting at start.
		end := start
		for end < uint32(len(values)) && values[end] != 0 {
			end++
		}
		length = end - start
	}

	return values[start : start+length]
}
