// Package view implements the strided-column and offset-tape conventions
// shared by every batched operation in the blob, document, and graph
// layers: broadcastable input columns (Column), concatenated output
// tapes (Tape), and bit-packed presence (Presence).
package view
