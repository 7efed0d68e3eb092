// Package graph implements the graph layer (C9): vertices as keys in a
// graph-modality collection, edges as adjacency triples stored in the
// blob layer so graph mutations inherit blob's transactional semantics.
//
// For each vertex v, the blob at v is a packed list of fixed-width
// (neighbor, edge_id, role) triples. An edge e from s to t produces one
// Outgoing entry in s's list and one Incoming entry in t's list;
// self-loops produce both entries in the same list.
package graph
