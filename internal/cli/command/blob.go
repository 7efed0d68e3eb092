package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/polykv/polykv-go/internal/blob"
	"github.com/polykv/polykv-go/internal/view"
)

// blobRow is the table row shape for a single blob get/scan result.
type blobRow struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	Found bool   `json:"found"`
}

func col1[T any](v T) view.Column[T] {
	c, _ := view.NewColumn([]T{v}, 1)
	return c
}

// BlobCommand returns the "blob" command group: get, put, delete, scan.
func BlobCommand() *cli.Command {
	return &cli.Command{
		Name:  "blob",
		Usage: "read and write raw key/value blobs",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "read one key",
				ArgsUsage: "<key>",
				Action:    blobGet,
			},
			{
				Name:      "put",
				Usage:     "write one key",
				ArgsUsage: "<key> <value>",
				Action:    blobPut,
			},
			{
				Name:      "delete",
				Usage:     "delete one key",
				ArgsUsage: "<key>",
				Action:    blobDelete,
			},
			{
				Name:  "scan",
				Usage: "list keys in ascending order",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "first key to include (empty = from the beginning)"},
					&cli.UintFlag{Name: "limit", Usage: "maximum number of keys to return", Value: 100},
				},
				Action: blobScan,
			},
		},
	}
}

func blobGet(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("blob get requires exactly one <key> argument")
	}
	database := Database(c)
	collectionID, err := ResolveCollection(c, database)
	if err != nil {
		return err
	}

	key := []byte(c.Args().First())
	result, st := blob.Read(context.Background(), database.Substrate, nil, nil, col1(collectionID), col1(key), blob.ReadOptions{WithValues: true})
	if st != nil {
		return st
	}

	row := blobRow{Key: string(key), Found: result.Presence.At(0)}
	if row.Found {
		row.Value = string(result.Values[result.Offsets[0]:result.Offsets[1]])
	}
	return Format(c).Format(c.App.Writer, row)
}

func blobPut(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("blob put requires <key> and <value> arguments")
	}
	database := Database(c)
	collectionID, err := ResolveCollection(c, database)
	if err != nil {
		return err
	}

	key := []byte(c.Args().Get(0))
	value := []byte(c.Args().Get(1))

	st := blob.Write(context.Background(), database.Txns, nil,
		col1(collectionID), col1(key), view.AllPresent(),
		col1(uint32(0)), col1(uint32(len(value))), value, blob.WriteOptions{Flush: true})
	if st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, blobRow{Key: string(key), Value: string(value), Found: true})
}

func blobDelete(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("blob delete requires exactly one <key> argument")
	}
	database := Database(c)
	collectionID, err := ResolveCollection(c, database)
	if err != nil {
		return err
	}

	key := []byte(c.Args().First())
	st := blob.Write(context.Background(), database.Txns, nil,
		col1(collectionID), col1(key), view.NewPresence(make([]byte, 1)),
		col1(uint32(0)), col1(uint32(0)), nil, blob.WriteOptions{Flush: true})
	if st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, blobRow{Key: string(key), Found: false})
}

func blobScan(c *cli.Context) error {
	database := Database(c)
	collectionID, err := ResolveCollection(c, database)
	if err != nil {
		return err
	}

	var start []byte
	if s := c.String("start"); s != "" {
		start = []byte(s)
	}

	result, st := blob.Scan(context.Background(), database.Substrate, nil, nil,
		col1(collectionID), col1(start), col1(uint32(c.Uint("limit"))), blob.ScanOptions{})
	if st != nil {
		return st
	}

	rows := make([]blobRow, result.Counts[0])
	for i := range rows {
		rows[i] = blobRow{Key: string(result.Keys[result.Offsets[i]:result.Offsets[i+1]]), Found: true}
	}
	return Format(c).Format(c.App.Writer, rows)
}
