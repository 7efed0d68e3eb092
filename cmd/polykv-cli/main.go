// Package main provides the entry point for polykv-cli.
//
// polykv-cli is a thin client issuing single batched operations against
// an embedded polykv data directory, for operational use: inspecting,
// seeding, or repairing a directory from a shell without standing up a
// polykv-server process.
package main

import (
	"fmt"
	"os"

	"github.com/polykv/polykv-go/internal/cli/command"
	"github.com/polykv/polykv-go/pkg/buildinfo"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	command.Version = version
	command.Commit = commit
	command.BuildTime = buildTime
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.BuildTime = buildTime

	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
