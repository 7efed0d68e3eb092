// Package output provides output formatting for polykv-cli.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: table rendering
//   - json.go: JSON output formatting
//
// Formatters support a machine-readable mode (json) and a human-readable
// mode (table) for the same underlying result value.
package output
