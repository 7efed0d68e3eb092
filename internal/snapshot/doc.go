// Package snapshot implements the snapshot manager (C6): opaque,
// refcounted handles onto a consistent, long-lived read view of the
// substrate at the moment the snapshot was created.
package snapshot
