// Package shutdown provides graceful shutdown for polykv.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - A timeout passed to cleanup callbacks through their context
//   - Cleanup callback registration (run in reverse order)
//   - Shutdown coordination
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return db.Close() })
//	err := h.Wait() // blocks until SIGINT or SIGTERM, then runs the callbacks
//
package shutdown
