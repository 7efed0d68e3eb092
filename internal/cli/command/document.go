package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/polykv/polykv-go/internal/document"
)

// documentRow is the table row shape for a single document get/set result.
type documentRow struct {
	Key     string `json:"key"`
	Payload string `json:"payload,omitempty"`
	Found   bool   `json:"found"`
}

// DocumentCommand returns the "doc" command group: get, set.
func DocumentCommand() *cli.Command {
	return &cli.Command{
		Name:  "doc",
		Usage: "read and write structured documents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Usage: "wire format: json, msgpack, bson, cbor, ubjson", Value: "json"},
			&cli.StringSliceFlag{Name: "path", Usage: "JSON-Pointer path(s) to project (get) or merge (set)"},
		},
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "read one document",
				ArgsUsage: "<key>",
				Action:    documentGet,
			},
			{
				Name:      "set",
				Usage:     "write one document",
				ArgsUsage: "<key> <payload>",
				Action:    documentSet,
			},
		},
	}
}

func documentGet(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("doc get requires exactly one <key> argument")
	}
	database := Database(c)
	collectionID, err := ResolveCollection(c, database)
	if err != nil {
		return err
	}

	key := []byte(c.Args().First())
	format := document.Format(c.String("format"))
	payload, found, st := database.Documents.Get(context.Background(), nil, nil, collectionID, key, format, c.StringSlice("path"))
	if st != nil {
		return st
	}

	return Format(c).Format(c.App.Writer, documentRow{
		Key:     string(key),
		Payload: string(payload),
		Found:   found,
	})
}

func documentSet(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("doc set requires <key> and <payload> arguments")
	}
	database := Database(c)
	collectionID, err := ResolveCollection(c, database)
	if err != nil {
		return err
	}

	key := []byte(c.Args().Get(0))
	payload := []byte(c.Args().Get(1))
	format := document.Format(c.String("format"))

	if st := database.Documents.Put(context.Background(), nil, collectionID, key, payload, format, c.StringSlice("path")); st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, documentRow{Key: string(key), Payload: string(payload), Found: true})
}
