package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/pathfind"
	"github.com/ritzau/annotator/pkg/render"
	"github.com/spf13/cobra"
)

var (
	renderFrom string
	renderTo   string
)

var renderCmd = &cobra.Command{
	Use:   "render OUT.png",
	Short: "Draw the graph to a PNG",
	Long: `Draw points, labels and lines to a PNG. With --from and --to the path
between the two labels is highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderFrom, "from", "", "Label where the highlighted path starts")
	renderCmd.Flags().StringVar(&renderTo, "to", "", "Label where the highlighted path ends")
}

func runRender(cmd *cobra.Command, args []string) error {
	if (renderFrom == "") != (renderTo == "") {
		return errors.New("--from and --to must be given together")
	}

	opts, err := searchOptions()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Load(cmd.Context())
	if err != nil {
		return err
	}

	renderOpts := render.DefaultOptions()
	renderOpts.Directed = opts.Directed
	if renderFrom != "" {
		path, err := pathfind.Find(renderFrom, renderTo, snap.Points, snap.Edges, opts)
		switch {
		case errors.Is(err, pathfind.ErrNoPathExists):
			logging.Warn("no path to highlight", "from", renderFrom, "to", renderTo)
		case err != nil:
			return err
		default:
			renderOpts.Path = path
			renderOpts.Highlight = pathfind.EdgesAlong(path, snap.Edges, opts.Directed)
		}
	}

	out, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := render.WritePNG(out, snap, renderOpts); err != nil {
		out.Close()
		return fmt.Errorf("render %s: %w", args[0], err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	logging.Info("rendered graph", "path", args[0], "points", len(snap.Points), "highlighted", len(renderOpts.Highlight))
	return nil
}
