// Package wal provides write-ahead logging for durability.
//
// WAL records committed substrate mutations on disk, enabling recovery
// after crashes by replaying them.
//
// Features:
//
//   - Batched writes: configurable batch size and sync interval
//   - File rotation: automatic rotation at configurable file sizes
//   - Encryption: optional encryption using adaptive ciphers
//   - Compaction: removal of old WAL segments when a caller runs a Compactor
//   - Recovery: sequential replay for crash recovery
//
// Entry types:
//
//   - SET: a key/value write
//   - DELETE: a key removal
//   - DROP_COLLECTION: removal of an entire collection
//
// Segment file format:
//
//	wal-<segment-id>.log
//	[magic:8 "PLYKVWAL"]
//	[Entry]*
//	[checksum:32 SHA-256 of all bytes above] (optional for the active segment)
//
// Entry wire format:
//
//	[Length:4][CRC32:4][Type:1][Payload:Length-5]
//
// Where:
//   - Length = CRC32 + Type + Payload (big-endian uint32)
//   - CRC32 covers Type+Payload (IEEE)
//   - Payload is JSON (optionally includes an encrypted value blob)
package wal
