// Package db wires the substrate, collection registry, transaction
// manager, snapshot manager, and the blob/document/graph layers into one
// top-level Database, mirroring the teacher's storage.Engine composition:
// Open builds every component without replaying anything; Recover replays any
// write-ahead log onto the substrate before the Database is safe to
// serve traffic; Close shuts every component down in reverse order.
package db
