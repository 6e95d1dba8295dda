package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import SRC",
	Short: "Copy a JSON document into the configured store",
	Long: `Read an exported JSON document and replace the graph in the configured
store with it. Points without a name get a fresh id.

Example:
  annotator import exported.json --store badger`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return err
	}
	src := store.NewFileStore(args[0])

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if fs, ok := st.(*store.FileStore); ok && sameFile(fs.Path(), src.Path()) {
		return fmt.Errorf("%s is already the configured document", args[0])
	}

	snap, err := src.Load(cmd.Context())
	if err != nil {
		return err
	}
	if err := st.Save(cmd.Context(), snap); err != nil {
		return err
	}

	logging.Info("imported document", "from", args[0], "to", st.Location(),
		"points", len(snap.Points), "lines", len(snap.Edges))
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
