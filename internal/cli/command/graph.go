package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/polykv/polykv-go/internal/graph"
)

// tripleRow is the table row shape for one adjacency-list entry returned
// by "graph find-edges".
type tripleRow struct {
	Vertex   int64  `json:"vertex"`
	Neighbor int64  `json:"neighbor"`
	EdgeID   int64  `json:"edge_id"`
	Role     string `json:"role"`
}

// GraphCommand returns the "graph" command group.
func GraphCommand() *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: "operate on adjacency-list graph data",
		Subcommands: []*cli.Command{
			{
				Name:      "upsert-vertices",
				Usage:     "create vertices if they do not already exist",
				ArgsUsage: "<vertex>...",
				Action:    graphUpsertVertices,
			},
			{
				Name:      "upsert-edges",
				Usage:     "add an edge between two vertices",
				ArgsUsage: "<source> <target> <edge-id>",
				Action:    graphUpsertEdge,
			},
			{
				Name:      "remove-edges",
				Usage:     "remove an edge between two vertices",
				ArgsUsage: "<source> <target> <edge-id>",
				Action:    graphRemoveEdge,
			},
			{
				Name:      "find-edges",
				Usage:     "list a vertex's edges",
				ArgsUsage: "<vertex>",
				Flags:     []cli.Flag{roleFlag()},
				Action:    graphFindEdges,
			},
			{
				Name:      "degree",
				Usage:     "count a vertex's edges",
				ArgsUsage: "<vertex>",
				Flags:     []cli.Flag{roleFlag()},
				Action:    graphDegree,
			},
		},
	}
}

func roleFlag() cli.Flag {
	return &cli.StringFlag{Name: "role", Usage: "outgoing, incoming, or any", Value: "any"}
}

func parseRole(s string) (graph.RoleMask, error) {
	switch strings.ToLower(s) {
	case "outgoing":
		return graph.MaskOutgoing, nil
	case "incoming":
		return graph.MaskIncoming, nil
	case "any", "":
		return graph.MaskAny, nil
	default:
		return 0, fmt.Errorf("unknown role %q (want outgoing, incoming, or any)", s)
	}
}

func parseVertices(args []string) ([]int64, error) {
	vertices := make([]int64, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex %q: %w", a, err)
		}
		vertices[i] = v
	}
	return vertices, nil
}

func graphForContext(c *cli.Context) (*graph.Graph, error) {
	database := Database(c)
	collectionID, err := ResolveCollection(c, database)
	if err != nil {
		return nil, err
	}
	return database.Graph(collectionID), nil
}

func graphUpsertVertices(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("graph upsert-vertices requires at least one <vertex> argument")
	}
	g, err := graphForContext(c)
	if err != nil {
		return err
	}
	vertices, err := parseVertices(c.Args().Slice())
	if err != nil {
		return err
	}
	if st := g.UpsertVertices(context.Background(), nil, vertices); st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, map[string]any{"upserted": len(vertices)})
}

func graphUpsertEdge(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return fmt.Errorf("graph upsert-edges requires <source> <target> <edge-id> arguments")
	}
	g, err := graphForContext(c)
	if err != nil {
		return err
	}
	triple, err := parseVertices(c.Args().Slice())
	if err != nil {
		return err
	}
	if st := g.UpsertEdges(context.Background(), nil, triple[0:1], triple[1:2], triple[2:3]); st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, tripleRow{Vertex: triple[0], Neighbor: triple[1], EdgeID: triple[2]})
}

func graphRemoveEdge(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return fmt.Errorf("graph remove-edges requires <source> <target> <edge-id> arguments")
	}
	g, err := graphForContext(c)
	if err != nil {
		return err
	}
	triple, err := parseVertices(c.Args().Slice())
	if err != nil {
		return err
	}
	if st := g.RemoveEdges(context.Background(), nil, triple[0:1], triple[1:2], triple[2:3]); st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, tripleRow{Vertex: triple[0], Neighbor: triple[1], EdgeID: triple[2]})
}

func graphFindEdges(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("graph find-edges requires exactly one <vertex> argument")
	}
	g, err := graphForContext(c)
	if err != nil {
		return err
	}
	role, err := parseRole(c.String("role"))
	if err != nil {
		return err
	}
	vertex, err := parseVertices(c.Args().Slice())
	if err != nil {
		return err
	}

	edges, st := g.FindEdges(context.Background(), nil, vertex, role)
	if st != nil {
		return st
	}

	var rows []tripleRow
	for _, t := range edges[0] {
		roleName := "outgoing"
		if t.Role == graph.Incoming {
			roleName = "incoming"
		}
		rows = append(rows, tripleRow{Vertex: vertex[0], Neighbor: t.Neighbor, EdgeID: t.EdgeID, Role: roleName})
	}
	return Format(c).Format(c.App.Writer, rows)
}

func graphDegree(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("graph degree requires exactly one <vertex> argument")
	}
	g, err := graphForContext(c)
	if err != nil {
		return err
	}
	role, err := parseRole(c.String("role"))
	if err != nil {
		return err
	}
	vertex, err := parseVertices(c.Args().Slice())
	if err != nil {
		return err
	}

	counts, st := g.Degree(context.Background(), nil, vertex, role)
	if st != nil {
		return st
	}
	return Format(c).Format(c.App.Writer, map[string]any{"vertex": vertex[0], "degree": counts[0]})
}
