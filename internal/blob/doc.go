// Package blob implements the batched blob-layer operations (C4) —
// read, write, scan, sample, and measure — over strided task columns
// from internal/view, against either the live substrate, a caller's
// transaction, or a pinned snapshot.
package blob
