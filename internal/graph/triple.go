package graph

import "encoding/binary"

// Role distinguishes which side of an edge a triple represents.
type Role uint8

const (
	Outgoing Role = iota
	Incoming
)

// RoleMask filters find/degree/remove operations by which triples to
// consider.
type RoleMask uint8

const (
	MaskOutgoing RoleMask = 1 << iota
	MaskIncoming
	MaskAny = MaskOutgoing | MaskIncoming
)

func (m RoleMask) matches(r Role) bool {
	switch r {
	case Outgoing:
		return m&MaskOutgoing != 0
	case Incoming:
		return m&MaskIncoming != 0
	default:
		return false
	}
}

// Triple is one adjacency entry: the neighbor vertex, the edge id, and
// which side of the edge this entry represents from the owning vertex's
// point of view.
type Triple struct {
	Neighbor int64
	EdgeID   int64
	Role     Role
}

// tripleSize is the fixed on-disk width of one triple: two int64s and a
// one-byte role tag.
const tripleSize = 8 + 8 + 1

func encodeTriple(t Triple) [tripleSize]byte {
	var buf [tripleSize]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(t.Neighbor))
	binary.BigEndian.PutUint64(buf[8:16], uint64(t.EdgeID))
	buf[16] = byte(t.Role)
	return buf
}

func decodeTriple(b []byte) Triple {
	return Triple{
		Neighbor: int64(binary.BigEndian.Uint64(b[0:8])),
		EdgeID:   int64(binary.BigEndian.Uint64(b[8:16])),
		Role:     Role(b[16]),
	}
}

// decodeAdjacency unpacks a vertex's raw adjacency blob into its triples.
func decodeAdjacency(raw []byte) []Triple {
	n := len(raw) / tripleSize
	out := make([]Triple, n)
	for i := 0; i < n; i++ {
		out[i] = decodeTriple(raw[i*tripleSize : (i+1)*tripleSize])
	}
	return out
}

// encodeAdjacency packs a vertex's triples back into its raw blob form.
func encodeAdjacency(triples []Triple) []byte {
	out := make([]byte, len(triples)*tripleSize)
	for i, t := range triples {
		b := encodeTriple(t)
		copy(out[i*tripleSize:], b[:])
	}
	return out
}
