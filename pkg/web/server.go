// Package web serves the annotation editor API: graph editing, path queries,
// analysis, PNG previews and a Server-Sent Events stream of graph changes.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/annotator/pkg/document"
	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/pathfind"
	"github.com/ritzau/annotator/pkg/pubsub"
	"github.com/ritzau/annotator/pkg/session"
	"github.com/ritzau/annotator/pkg/store"
)

//go:embed static/*
var staticFiles embed.FS

// Server represents the web server
type Server struct {
	router    *mux.Router
	session   *session.Session
	store     store.Store
	publisher *pubsub.SSEPublisher
	options   pathfind.Options

	saveMu       sync.Mutex
	savedVersion int
}

// NewServer creates a server editing sess. Every change is saved to st and
// published to SSE subscribers. options are the defaults for path queries.
func NewServer(sess *session.Session, st store.Store, options pathfind.Options) *Server {
	ssePublisher := pubsub.NewSSEPublisher()
	ssePublisher.ConfigureTopic(pubsub.TopicGraph, pubsub.GraphTopicConfig)

	s := &Server{
		router:       mux.NewRouter(),
		session:      sess,
		store:        st,
		publisher:    ssePublisher,
		options:      options,
		savedVersion: sess.Version(),
	}
	s.setupRoutes()
	sess.OnChange(s.onChange)
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestLog)

	s.router.HandleFunc("/api/subscribe/graph", s.handleSubscribeGraph).Methods("GET").Name(routeSubscribe)

	s.router.HandleFunc("/api/graph", s.handleGetGraph).Methods("GET")
	s.router.HandleFunc("/api/graph", s.handlePutGraph).Methods("PUT")
	s.router.HandleFunc("/api/points", s.handleAddPoint).Methods("POST")
	s.router.HandleFunc("/api/points/{id}", s.handlePatchPoint).Methods("PATCH")
	s.router.HandleFunc("/api/points/{id}", s.handleDeletePoint).Methods("DELETE")
	s.router.HandleFunc("/api/lines", s.handleAddLine).Methods("POST")
	s.router.HandleFunc("/api/lines/{id}", s.handleDeleteLine).Methods("DELETE")
	s.router.HandleFunc("/api/undo", s.handleUndo).Methods("POST")

	s.router.HandleFunc("/api/path", s.handlePath).Methods("GET")
	s.router.HandleFunc("/api/analysis", s.handleAnalysis).Methods("GET")
	s.router.HandleFunc("/api/distances/{id}", s.handleDistances).Methods("GET")
	s.router.HandleFunc("/api/render.png", s.handleRender).Methods("GET")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("embedded static files missing", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS))).Name(routeStatic)
}

// Handler returns the router; every matched route is request-logged
func (s *Server) Handler() http.Handler {
	return s.router
}

// onChange saves and publishes every session change
func (s *Server) onChange(change session.Change) {
	if change.Action != session.ActionReload {
		s.save(change)
	}

	err := s.publisher.Publish(pubsub.TopicGraph, pubsub.EventGraphChanged, pubsub.GraphChanged{
		Action:   string(change.Action),
		Version:  change.Version,
		Points:   len(change.Snapshot.Points),
		Lines:    len(change.Snapshot.Edges),
		Document: document.FromSnapshot(change.Snapshot),
	})
	if err != nil {
		logging.Debug("graph change not published", "version", change.Version, "error", err)
	}
}

// save persists a change unless a newer one has already been saved
func (s *Server) save(change session.Change) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if change.Version <= s.savedVersion {
		logging.Trace("skipping stale save", "version", change.Version, "saved", s.savedVersion)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.store.Save(ctx, change.Snapshot); err != nil {
		logging.Error("autosave failed", "location", s.store.Location(), "version", change.Version, "error", err)
		_ = s.publisher.Publish(pubsub.TopicGraph, pubsub.EventSaveFailed, pubsub.SaveFailed{
			Version: change.Version,
			Error:   err.Error(),
		})
		return
	}
	s.savedVersion = change.Version
}

func (s *Server) handleSubscribeGraph(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	// Browsers send the id of the last event they saw when they reconnect
	lastSeen, _ := strconv.Atoi(r.Header.Get("Last-Event-ID"))
	sub, err := s.publisher.SubscribeFrom(r.Context(), pubsub.TopicGraph, lastSeen)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	// Stream events
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "SSE client went away", "error", err)
				return
			}
			flush(w)
		}
	}
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start serves on port until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.publisher.Close()
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	// Ends open SSE streams so Shutdown does not wait on them
	s.publisher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	logging.Info("web server stopped")
	return nil
}

// Close releases the publisher; used when the server is only mounted as a Handler
func (s *Server) Close() error {
	return s.publisher.Close()
}
