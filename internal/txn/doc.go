// Package txn implements optimistic-concurrency-control transactions
// (C5) for the storage engine, layered atop any substrate.Engine rather
// than depending on the substrate's own transaction support.
//
// Every transaction accumulates a watch-set (every key it read, paired
// with the generation that key was at when read) and a write-set (every
// key it wrote, paired with its new value or a tombstone). Nothing is
// applied to the substrate until Commit: Commit re-validates that every
// watched key is still at the generation it was read at, and only then
// applies the write-set, atomically, as one new generation.
package txn
