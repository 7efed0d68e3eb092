// Package arena provides the bump-allocated scratch memory (C1) that
// every batched polykv operation materializes its outputs into.
package arena
