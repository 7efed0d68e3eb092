package command

import (
	"bytes"
	"testing"
)

// runCLI runs App() against a fresh in-memory data directory, returning
// whatever the command wrote to stdout. Each call gets its own directory
// and substrate, so it only suits single-invocation commands; use
// runCLIIn for a sequence of commands that must observe each other's
// writes.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIIn(t, t.TempDir(), "memory", args...)
}

// runCLIIn runs App() against dir with the given backend, for test cases
// where a sequence of commands must share state across invocations (e.g.
// a put followed by a get in a later runCLIIn call). The memory backend
// has no on-disk persistence, so callers that need state to survive
// across calls must pass "badger".
func runCLIIn(t *testing.T, dir, backend string, args ...string) (string, error) {
	t.Helper()

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf

	fullArgs := append([]string{"polykv-cli", "--data-dir", dir, "--backend", backend}, args...)
	err := app.Run(fullArgs)
	return buf.String(), err
}
