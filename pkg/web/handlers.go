package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ritzau/annotator/pkg/analysis"
	"github.com/ritzau/annotator/pkg/document"
	"github.com/ritzau/annotator/pkg/graph"
	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/model"
	"github.com/ritzau/annotator/pkg/pathfind"
	"github.com/ritzau/annotator/pkg/render"
	"github.com/ritzau/annotator/pkg/session"
)

// maxBody bounds request bodies; documents are small
const maxBody = 8 << 20

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

// PointRequest creates a point
type PointRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Kind  string  `json:"kind,omitempty"`
	Label string  `json:"label,omitempty"`
}

// PointPatch changes a point; absent fields are left alone
type PointPatch struct {
	Label *string  `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

// LineRequest connects two points
type LineRequest struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

// UndoResponse reports what was undone
type UndoResponse struct {
	Undone  string `json:"undone"`
	Version int    `json:"version"`
}

// PathResponse is the result of a path query. A search that ran but found
// nothing has Found false and empty lists.
type PathResponse struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Strategy string   `json:"strategy"`
	Found    bool     `json:"found"`
	Path     []string `json:"path"`  // Point ids, start and end included
	Lines    []string `json:"lines"` // Line ids to highlight
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, ErrorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownPoint),
		errors.Is(err, session.ErrUnknownEdge),
		errors.Is(err, graph.ErrUnknownPoint),
		errors.Is(err, pathfind.ErrLabelNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSelfLoop):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNothingToUndo):
		return http.StatusConflict
	case errors.Is(err, pathfind.ErrMalformedGraph),
		errors.Is(err, pathfind.ErrSearchBudgetExceeded):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Graph-Version", strconv.Itoa(s.session.Version()))
	writeJSON(w, r, http.StatusOK, document.FromSnapshot(s.session.Snapshot()))
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := document.Decode(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.session.Import(snap)
	logging.InfoContext(r.Context(), "imported graph", "points", len(snap.Points), "lines", len(snap.Edges))
	writeJSON(w, r, http.StatusOK, document.FromSnapshot(s.session.Snapshot()))
}

func (s *Server) handleAddPoint(w http.ResponseWriter, r *http.Request) {
	var req PointRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p := s.session.AddPoint(req.X, req.Y, req.Kind)
	if req.Label != "" {
		var err error
		if p, err = s.session.SetLabel(p.ID, req.Label); err != nil {
			// Deleted between the two calls
			writeError(w, r, statusFor(err), err)
			return
		}
	}
	writeJSON(w, r, http.StatusCreated, p)
}

func (s *Server) handlePatchPoint(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch PointPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if (patch.X == nil) != (patch.Y == nil) {
		writeError(w, r, http.StatusBadRequest, errors.New("x and y must be given together"))
		return
	}

	p, ok := s.session.Snapshot().FindPoint(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, session.ErrUnknownPoint)
		return
	}

	var err error
	if patch.Label != nil {
		if p, err = s.session.SetLabel(id, *patch.Label); err != nil {
			writeError(w, r, statusFor(err), err)
			return
		}
	}
	if patch.X != nil {
		if p, err = s.session.MovePoint(id, *patch.X, *patch.Y); err != nil {
			writeError(w, r, statusFor(err), err)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleDeletePoint(w http.ResponseWriter, r *http.Request) {
	if err := s.session.DeletePoint(mux.Vars(r)["id"]); err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req LineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	e, err := s.session.Connect(req.FromID, req.ToID)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusCreated, e)
}

func (s *Server) handleDeleteLine(w http.ResponseWriter, r *http.Request) {
	if err := s.session.DeleteEdge(mux.Vars(r)["id"]); err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	action, err := s.session.Undo()
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, UndoResponse{Undone: string(action), Version: s.session.Version()})
}

// queryOptions overrides the server's path options from ?strategy=, ?by= and ?directed=
func (s *Server) queryOptions(r *http.Request) (pathfind.Options, error) {
	opts := s.options
	q := r.URL.Query()

	if v := q.Get("strategy"); v != "" {
		strategy, err := pathfind.ParseStrategy(v)
		if err != nil {
			return opts, err
		}
		opts.Strategy = strategy
	}
	if v := q.Get("by"); v != "" {
		by, err := pathfind.ParseResolution(v)
		if err != nil {
			return opts, err
		}
		opts.Resolve = by
	}
	if v := q.Get("directed"); v != "" {
		directed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, err
		}
		opts.Directed = directed
	}
	if opts.Strategy == "" {
		opts.Strategy = pathfind.StrategyDepthFirst
	}
	return opts, nil
}

// findPath runs a query against snap. A missing path is not an error.
func findPath(snap model.Snapshot, from, to string, opts pathfind.Options) (PathResponse, error) {
	resp := PathResponse{
		From:     from,
		To:       to,
		Strategy: string(opts.Strategy),
		Path:     make([]string, 0),
		Lines:    make([]string, 0),
	}

	path, err := pathfind.Find(from, to, snap.Points, snap.Edges, opts)
	if errors.Is(err, pathfind.ErrNoPathExists) {
		return resp, nil
	}
	if err != nil {
		return resp, err
	}

	resp.Found = true
	resp.Path = path
	resp.Lines = pathfind.EdgesAlong(path, snap.Edges, opts.Directed)
	return resp, nil
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	if !q.Has("from") || !q.Has("to") {
		writeError(w, r, http.StatusBadRequest, errors.New("from and to are required"))
		return
	}

	resp, err := findPath(s.session.Snapshot(), q.Get("from"), q.Get("to"), opts)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	logging.DebugContext(r.Context(), "path query", "from", resp.From, "to", resp.To,
		"strategy", resp.Strategy, "found", resp.Found, "length", len(resp.Path))
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, analysis.Analyze(s.session.Snapshot(), opts.Directed))
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	d, err := analysis.HopDistances(s.session.Snapshot(), mux.Vars(r)["id"], opts.Directed)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	snap := s.session.Snapshot()
	renderOpts := render.DefaultOptions()
	renderOpts.Directed = opts.Directed

	q := r.URL.Query()
	if q.Has("from") && q.Has("to") {
		resp, err := findPath(snap, q.Get("from"), q.Get("to"), opts)
		if err != nil {
			writeError(w, r, statusFor(err), err)
			return
		}
		renderOpts.Path = resp.Path
		renderOpts.Highlight = resp.Lines
	}

	img, err := render.Render(snap, renderOpts)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.EncodePNG(w, img); err != nil {
		logging.WarnContext(r.Context(), "failed to write PNG", "error", err)
	}
}
