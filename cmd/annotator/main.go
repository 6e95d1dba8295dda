// Command annotator edits and queries annotation graphs: points on a floor plan
// joined by lines, with path finding between labeled points.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ritzau/annotator/pkg/config"
	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/pathfind"
	"github.com/ritzau/annotator/pkg/store"
	"github.com/spf13/cobra"
)

// errReported means the command already printed why it failed
var errReported = errors.New("reported")

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "annotator",
	Short: "Edit annotation graphs and find paths between labeled points",
	Long: `annotator keeps a graph of points and lines in a JSON document
(positionPoints/positionLines) or an embedded database, serves an editor
over HTTP, and finds connecting paths between labeled points.

Configuration is read from annotator.toml, ANNOTATOR_* environment
variables and flags, in increasing priority.

Examples:
  annotator serve --document plan.json --watch
  annotator path "Entrance" "Lab 3" --strategy shortest
  annotator check --strict
  annotator render plan.png --from Entrance --to "Lab 3"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		if err := logging.Init(loaded.Log.Level, loaded.Log.JSON); err != nil {
			return err
		}
		cfg = loaded
		logging.Debug("configuration loaded", "document", cfg.Document, "store", cfg.Store,
			"strategy", cfg.Strategy, "directed", cfg.Directed, "strict", cfg.Strict)
		return nil
	},
}

func init() {
	defaults := config.Defaults()
	f := rootCmd.PersistentFlags()
	f.StringP("document", "d", defaults["document"].(string), "JSON document to edit")
	f.String("store", defaults["store"].(string), "Where the graph is kept: file or badger")
	f.String("data-dir", ".annotator", "Database directory for --store badger")
	f.Bool("directed", false, "Only follow lines from their first point to their second")
	f.Bool("strict", false, "Reject graphs with dangling lines or duplicate ids")
	f.String("strategy", defaults["strategy"].(string), "Path search: depth-first or shortest")
	f.Int("max-steps", 0, "Search budget in neighbour expansions, 0 is unlimited")
	f.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	f.Bool("log-json", false, "Log as JSON")

	rootCmd.AddCommand(serveCmd, pathCmd, checkCmd, renderCmd, importCmd)
}

// searchOptions builds path options from the configuration
func searchOptions() (pathfind.Options, error) {
	strategy, err := pathfind.ParseStrategy(cfg.Strategy)
	if err != nil {
		return pathfind.Options{}, err
	}
	return pathfind.Options{
		Directed: cfg.Directed,
		Strict:   cfg.Strict,
		Strategy: strategy,
		MaxSteps: cfg.Max.Steps,
	}, nil
}

// openStore opens the configured store
func openStore() (store.Store, error) {
	return store.Open(store.Kind(cfg.Store), cfg.Document, cfg.Data.Dir)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
