// Package cmap provides a generic sharded concurrent map.
//
// polykv uses it for in-process indexes that are read far more than they
// are written: the snapshot registry and the collection registry.
//
//   - Sharding: configurable shard count for parallelism
//   - Fine-grained locking: per-shard RWMutex for minimal contention
//   - Iteration: safe iteration while holding read locks, shard by shard
//
// Usage:
//
//	m := cmap.NewWithShards[txnKey, []byte](32)
//	m.Set(k, value)
//	val, ok := m.Get(k)
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
