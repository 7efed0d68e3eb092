package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/polykv/polykv-go/internal/cli/output"
	"github.com/polykv/polykv-go/internal/collection"
	"github.com/polykv/polykv-go/internal/db"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const databaseMetadataKey = "database"

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "polykv-cli",
		Usage:   "inspect and operate on an embedded polykv data directory",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			BlobCommand(),
			DocumentCommand(),
			GraphCommand(),
			CollectionCommand(),
			SystemCommand(),
		},
		Before: func(c *cli.Context) error {
			database, err := openDatabase(c)
			if err != nil {
				return err
			}
			c.App.Metadata[databaseMetadataKey] = database
			return nil
		},
		After: func(c *cli.Context) error {
			if database, ok := c.App.Metadata[databaseMetadataKey].(*db.Database); ok {
				return database.Close()
			}
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "polykv data directory",
			EnvVars: []string{"POLYKV_DIRECTORY"},
			Value:   "/var/lib/polykv/data",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "substrate backend: memory, badger",
			EnvVars: []string{"POLYKV_ENGINE_BACKEND"},
			Value:   "memory",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json",
			Value:   "table",
		},
		&cli.Uint64Flag{
			Name:    "collection-id",
			Aliases: []string{"cid"},
			Usage:   "numeric collection handle to operate against (0 = main)",
			Value:   collection.Main,
		},
		&cli.StringFlag{
			Name:    "collection",
			Usage:   "collection name to resolve to a handle, overriding --collection-id",
		},
	}
}

// openDatabase opens (without recovering — polykv-cli never replays a
// WAL onto a directory a running polykv-server may also have open) the
// data directory named by --data-dir, in the backend named by --backend.
func openDatabase(c *cli.Context) (*db.Database, error) {
	backend := db.Backend(c.String("backend"))
	cfg := db.DefaultConfig(c.String("data-dir"))
	cfg.Backend = backend
	if backend == db.BackendBadger {
		cfg.Badger.Dir = c.String("data-dir")
	}

	database, st := db.Open(context.Background(), cfg)
	if st != nil {
		return nil, fmt.Errorf("open database: %w", st)
	}
	return database, nil
}

// Database retrieves the embedded database opened by the Before hook.
func Database(c *cli.Context) *db.Database {
	database, _ := c.App.Metadata[databaseMetadataKey].(*db.Database)
	return database
}

// ResolveCollection returns the numeric collection handle to operate
// against: --collection, if set, is resolved (and created if it does not
// already exist) through the database's registry; otherwise --collection-id
// is used verbatim.
func ResolveCollection(c *cli.Context, database *db.Database) (uint64, error) {
	name := c.String("collection")
	if name == "" {
		return c.Uint64("collection-id"), nil
	}
	if id, ok := database.Collections.Resolve(name); ok {
		return id, nil
	}
	id, st := database.Collections.Create(context.Background(), name)
	if st != nil {
		return 0, fmt.Errorf("create collection %q: %w", name, st)
	}
	return id, nil
}

// Format returns the output.Formatter selected by --output.
func Format(c *cli.Context) output.Formatter {
	return output.NewFormatter(output.Format(c.String("output")))
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
