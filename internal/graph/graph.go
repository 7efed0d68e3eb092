package graph

import (
	"context"
	"encoding/binary"

	"github.com/polykv/polykv-go/internal/blob"
	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/txn"
	"github.com/polykv/polykv-go/internal/view"
)

// Graph implements adjacency-list graph operations against a single
// graph-modality collection.
type Graph struct {
	eng        substrate.Engine
	mgr        *txn.Manager
	collection uint64
}

// New returns a Graph storing its vertex adjacency blobs in collection.
// Reads go through eng directly; non-transactional writes go through mgr
// so they still serialize against watching transactions.
func New(eng substrate.Engine, mgr *txn.Manager, collection uint64) *Graph {
	return &Graph{eng: eng, mgr: mgr, collection: collection}
}

func vertexKey(v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func col1[T any](v T) view.Column[T] {
	c, _ := view.NewColumn([]T{v}, 1)
	return c
}

func (g *Graph) readAdjacency(ctx context.Context, tx *txn.Txn, v int64) ([]Triple, bool, *status.Status) {
	result, st := blob.Read(ctx, g.eng, tx, nil, col1(g.collection), col1(vertexKey(v)), blob.ReadOptions{WithValues: true})
	if st != nil {
		return nil, false, st
	}
	if !result.Presence.At(0) {
		return nil, false, nil
	}
	return decodeAdjacency(result.Values), true, nil
}

func (g *Graph) writeAdjacency(ctx context.Context, tx *txn.Txn, v int64, triples []Triple) *status.Status {
	raw := encodeAdjacency(triples)
	offsets := col1[uint32](0)
	lengths := col1(uint32(len(raw)))
	return blob.Write(ctx, g.mgr, tx, col1(g.collection), col1(vertexKey(v)), view.AllPresent(), offsets, lengths, raw, blob.WriteOptions{})
}

// UpsertVertices materializes an empty adjacency list for every vertex in
// vertices that does not already exist; existing vertices are untouched.
func (g *Graph) UpsertVertices(ctx context.Context, tx *txn.Txn, vertices []int64) *status.Status {
	for _, v := range vertices {
		_, existed, st := g.readAdjacency(ctx, tx, v)
		if st != nil {
			return st
		}
		if existed {
			continue
		}
		if st := g.writeAdjacency(ctx, tx, v, nil); st != nil {
			return st
		}
	}
	return nil
}

// UpsertEdges appends sources[i] -> targets[i] (id edgeIDs[i]) to both
// endpoints' adjacency lists. Re-inserting an existing (s,t,e) triple is a
// no-op.
func (g *Graph) UpsertEdges(ctx context.Context, tx *txn.Txn, sources, targets, edgeIDs []int64) *status.Status {
	for i := range sources {
		s, t, e := sources[i], targets[i], edgeIDs[i]

		if st := g.addTriple(ctx, tx, s, Triple{Neighbor: t, EdgeID: e, Role: Outgoing}); st != nil {
			return st
		}
		if st := g.addTriple(ctx, tx, t, Triple{Neighbor: s, EdgeID: e, Role: Incoming}); st != nil {
			return st
		}
	}
	return nil
}

func (g *Graph) addTriple(ctx context.Context, tx *txn.Txn, vertex int64, triple Triple) *status.Status {
	triples, _, st := g.readAdjacency(ctx, tx, vertex)
	if st != nil {
		return st
	}
	for _, existing := range triples {
		if existing == triple {
			return nil
		}
	}
	triples = append(triples, triple)
	return g.writeAdjacency(ctx, tx, vertex, triples)
}

// RemoveEdges deletes matching (s,t,e) triples from both endpoints'
// adjacencies. Removing a non-existent edge is not an error.
func (g *Graph) RemoveEdges(ctx context.Context, tx *txn.Txn, sources, targets, edgeIDs []int64) *status.Status {
	for i := range sources {
		s, t, e := sources[i], targets[i], edgeIDs[i]

		if st := g.removeTriple(ctx, tx, s, Triple{Neighbor: t, EdgeID: e, Role: Outgoing}); st != nil {
			return st
		}
		if st := g.removeTriple(ctx, tx, t, Triple{Neighbor: s, EdgeID: e, Role: Incoming}); st != nil {
			return st
		}
	}
	return nil
}

func (g *Graph) removeTriple(ctx context.Context, tx *txn.Txn, vertex int64, triple Triple) *status.Status {
	triples, existed, st := g.readAdjacency(ctx, tx, vertex)
	if st != nil || !existed {
		return st
	}
	out := triples[:0]
	for _, existing := range triples {
		if existing != triple {
			out = append(out, existing)
		}
	}
	return g.writeAdjacency(ctx, tx, vertex, out)
}

// RemoveVertices deletes each vertex's own adjacency blob and
// cascade-removes every edge it participates in (per role) from its
// neighbors' adjacencies too.
func (g *Graph) RemoveVertices(ctx context.Context, tx *txn.Txn, vertices []int64, role RoleMask) *status.Status {
	for _, v := range vertices {
		triples, existed, st := g.readAdjacency(ctx, tx, v)
		if st != nil {
			return st
		}
		if !existed {
			continue
		}

		for _, triple := range triples {
			if !role.matches(triple.Role) {
				continue
			}
			var reciprocal Triple
			switch triple.Role {
			case Outgoing:
				reciprocal = Triple{Neighbor: v, EdgeID: triple.EdgeID, Role: Incoming}
			case Incoming:
				reciprocal = Triple{Neighbor: v, EdgeID: triple.EdgeID, Role: Outgoing}
			}
			if st := g.removeTriple(ctx, tx, triple.Neighbor, reciprocal); st != nil {
				return st
			}
		}

		if st := blob.Write(ctx, g.mgr, tx, col1(g.collection), col1(vertexKey(v)),
			view.NewPresence([]byte{0x00}), col1[uint32](0), col1[uint32](0), []byte{}, blob.WriteOptions{}); st != nil {
			return st
		}
	}
	return nil
}

// FindEdges returns, per vertex, the (neighbor, edge_id, role) triples
// matching role, expressed from each vertex's own point of view (i.e. for
// an Outgoing entry the vertex itself is the source and Neighbor the
// target).
func (g *Graph) FindEdges(ctx context.Context, tx *txn.Txn, vertices []int64, role RoleMask) ([][]Triple, *status.Status) {
	out := make([][]Triple, len(vertices))
	for i, v := range vertices {
		triples, _, st := g.readAdjacency(ctx, tx, v)
		if st != nil {
			return nil, st
		}
		var filtered []Triple
		for _, t := range triples {
			if role.matches(t.Role) {
				filtered = append(filtered, t)
			}
		}
		out[i] = filtered
	}
	return out, nil
}

// Degree returns, per vertex, the count of neighbors matching role.
func (g *Graph) Degree(ctx context.Context, tx *txn.Txn, vertices []int64, role RoleMask) ([]int, *status.Status) {
	edges, st := g.FindEdges(ctx, tx, vertices, role)
	if st != nil {
		return nil, st
	}
	counts := make([]int, len(vertices))
	for i, e := range edges {
		counts[i] = len(e)
	}
	return counts, nil
}
