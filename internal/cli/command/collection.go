package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/polykv/polykv-go/internal/collection"
)

// CollectionCommand returns the "collection" command group: list, create,
// drop.
func CollectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "collection",
		Usage: "manage named collections",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list every named collection",
				Action: collectionList,
			},
			{
				Name:      "create",
				Usage:     "create a named collection",
				ArgsUsage: "<name>",
				Action:    collectionCreate,
			},
			{
				Name:      "drop",
				Usage:     "drop a named collection",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "keys_vals_handle (default), keys_vals, or vals",
						Value: "keys_vals_handle",
					},
				},
				Action: collectionDrop,
			},
		},
	}
}

func collectionList(c *cli.Context) error {
	database := Database(c)
	return Format(c).Format(c.App.Writer, database.Collections.List())
}

func collectionCreate(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("collection create requires exactly one <name> argument")
	}
	database := Database(c)
	name := c.Args().First()
	id, st := database.Collections.Create(context.Background(), name)
	if st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, map[string]any{"name": name, "id": id})
}

func parseDropMode(s string) (collection.DropMode, error) {
	switch strings.ToLower(s) {
	case "keys_vals_handle", "":
		return collection.DropKeysValsHandle, nil
	case "keys_vals":
		return collection.DropKeysVals, nil
	case "vals":
		return collection.DropVals, nil
	default:
		return 0, fmt.Errorf("unknown drop mode %q (want keys_vals_handle, keys_vals, or vals)", s)
	}
}

func collectionDrop(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("collection drop requires exactly one <name> argument")
	}
	mode, err := parseDropMode(c.String("mode"))
	if err != nil {
		return err
	}
	database := Database(c)
	name := c.Args().First()
	if st := database.Collections.Drop(context.Background(), name, mode); st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, map[string]any{"name": name, "dropped": true})
}
