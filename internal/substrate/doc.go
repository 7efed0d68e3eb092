// Package substrate defines the pluggable ordered-KV abstraction every
// higher layer (collections, transactions, blobs, documents, graphs) is
// built on, and ships two concrete implementations: an in-memory ordered
// map for tests and ephemeral use, and a Badger-backed engine for
// durable on-disk storage.
//
// A substrate is deliberately narrow: get/set/delete/scan on raw
// (collection, key) -> value bytes, plus capability advertisement so the
// transaction manager and collection registry know which conveniences
// they must build themselves versus which the substrate already gives
// them for free.
package substrate
