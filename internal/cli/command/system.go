package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/polykv/polykv-go/pkg/buildinfo"
)

// statusRow is the table row shape for "system status".
type statusRow struct {
	Backend         string `json:"backend"`
	DataDir         string `json:"data_dir"`
	SubstrateBytes  int64  `json:"substrate_bytes"`
	WALSegmentBytes int64  `json:"wal_segment_bytes"`
	SnapshotsOpen   int    `json:"snapshots_open"`
	Collections     int    `json:"collections"`
}

// SystemCommand returns the "system" command group: status, version.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "inspect the embedded database",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "show a summary of the open data directory",
				Action: systemStatus,
			},
			{
				Name:   "version",
				Usage:  "show build information",
				Action: systemVersion,
			},
			{
				Name:  "compact-wal",
				Usage: "delete WAL segments already reflected in the live substrate",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "retain", Usage: "minimum number of recent segments to keep (0 = default)"},
				},
				Action: systemCompactWAL,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	database := Database(c)
	row := statusRow{
		Backend:         c.String("backend"),
		DataDir:         c.String("data-dir"),
		SubstrateBytes:  database.SubstrateSizeBytes(),
		WALSegmentBytes: database.WALSegmentSizeBytes(),
		SnapshotsOpen:   database.SnapshotsOpen(),
		Collections:     len(database.Collections.List()),
	}
	return Format(c).Format(c.App.Writer, row)
}

func systemVersion(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, buildinfo.String())
	return nil
}

func systemCompactWAL(c *cli.Context) error {
	database := Database(c)
	if st := database.CompactWAL(c.Int("retain")); st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, map[string]any{"compacted": true})
}
