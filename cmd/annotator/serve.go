package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/session"
	"github.com/ritzau/annotator/pkg/store"
	"github.com/ritzau/annotator/pkg/watcher"
	"github.com/ritzau/annotator/pkg/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editor and API",
	Long: `Load the graph, serve the editor on --port and save every change.

With --watch and the file store, edits made to the document by other
tools are reloaded into the running editor.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port for the web server")
	serveCmd.Flags().Bool("watch", false, "Reload the document when it changes on disk")
	serveCmd.Flags().Bool("open", true, "Open a browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := searchOptions()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Load(ctx)
	if err != nil {
		return err
	}
	logging.Info("loaded graph", "location", st.Location(), "points", len(snap.Points), "lines", len(snap.Edges))

	sess := session.New(snap)
	server := web.NewServer(sess, st, opts)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx, cfg.Port)
	})

	if cfg.Watch {
		fileStore, ok := st.(*store.FileStore)
		if !ok {
			logging.Warn("--watch only applies to the file store, ignoring", "store", cfg.Store)
		} else {
			g.Go(func() error {
				err := watcher.Follow(ctx, fileStore.Path(), fileStore, sess,
					watcher.DefaultQuietPeriod, watcher.DefaultMaxWait)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}
	}

	if cfg.Open {
		go func() {
			// Wait a moment for the server to start
			select {
			case <-time.After(500 * time.Millisecond):
				openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
			case <-ctx.Done():
			}
		}()
	}

	return g.Wait()
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "url", url, "error", err)
	}
}
