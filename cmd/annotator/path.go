package main

import (
	"errors"

	"github.com/ritzau/annotator/pkg/output"
	"github.com/ritzau/annotator/pkg/pathfind"
	"github.com/spf13/cobra"
)

var pathBy string

var pathCmd = &cobra.Command{
	Use:   "path FROM TO",
	Short: "Find a path between two points",
	Long: `Find a sequence of lines connecting two points.

FROM and TO are labels; the first point carrying a label is used.
With --by id they are point ids instead.

Exits non-zero when a label is unknown or no path exists.

Examples:
  annotator path Entrance "Lab 3"
  annotator path 8f14e45f 45c48cce --by id --strategy shortest`,
	Args: cobra.ExactArgs(2),
	RunE: runPath,
}

func init() {
	pathCmd.Flags().StringVar(&pathBy, "by", "label", "Match FROM and TO against: label or id")
}

func runPath(cmd *cobra.Command, args []string) error {
	opts, err := searchOptions()
	if err != nil {
		return err
	}
	if opts.Resolve, err = pathfind.ParseResolution(pathBy); err != nil {
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

	result := output.PathResult{From: args[0], To: args[1]}
	path, err := pathfind.Find(args[0], args[1], snap.Points, snap.Edges, opts)
	switch {
	case errors.Is(err, pathfind.ErrNoPathExists):
	case err != nil:
		result.Err = err
	default:
		result.Path = path
		result.Lines = pathfind.EdgesAlong(path, snap.Edges, opts.Directed)
	}

	output.PrintPathReport(cmd.OutOrStdout(), snap, result)
	if len(result.Path) == 0 {
		return errReported
	}
	return nil
}
