// Package collection implements the collection registry (C7): the
// mapping from human-readable collection names to the numeric handles
// every substrate operation addresses a keyspace by.
//
// Collection 0 is reserved for the always-present main collection and
// is never persisted or returned by List. Every other collection's id
// is derived by hashing its name with 64-bit MurmurHash3, with the top
// bit cleared to leave room for a reserved internal metadata keyspace.
package collection
