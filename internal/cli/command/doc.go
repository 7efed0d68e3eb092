// Package command provides CLI command definitions for polykv-cli.
//
// polykv-cli operates on an embedded internal/db.Database directly: every
// command opens (and, on exit, closes) the data directory named by the
// --data-dir flag rather than talking to a running polykv-server process.
// It issues single batched operations (one blob/document/graph call per
// invocation) suited for operational use — inspecting or repairing a data
// directory from a shell — not sustained application traffic.
package command
