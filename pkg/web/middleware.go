package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ritzau/annotator/pkg/logging"
)

// Route names the request log treats specially
const (
	routeSubscribe = "subscribe"
	routeStatic    = "static"
)

// requestLog gives every request an id (X-Request-ID, generated when absent)
// and logs one line when it finishes, keyed by route template so that
// /api/points/{id} reads the same for every point.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := logging.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		name, route := routeOf(r)
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		elapsed := time.Since(start).Milliseconds()
		if name == routeSubscribe {
			logging.InfoContext(ctx, "event stream closed", "route", route,
				"resumedFrom", r.Header.Get("Last-Event-ID"), "durationMs", elapsed)
			return
		}

		level, msg := outcome(r.Method, name, recorder.status)
		logging.LogContext(ctx, level, msg, "method", r.Method, "route", route,
			"status", recorder.status, "durationMs", elapsed)
	})
}

// routeOf returns the matched route's name and template. Static files are
// logged by their path since they all share the "/" prefix route.
func routeOf(r *http.Request) (name, template string) {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "", r.URL.Path
	}
	name = route.GetName()
	if name == routeStatic {
		return name, r.URL.Path
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return name, r.URL.Path
	}
	return name, template
}

// outcome picks the log level for a finished request. Client errors such as an
// unknown label are ordinary answers; only server errors are logged as errors.
// Successful reads log at debug so that edits stand out at info.
func outcome(method, name string, status int) (slog.Level, string) {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError, "request failed"
	case status >= http.StatusBadRequest:
		return slog.LevelInfo, "request rejected"
	case name == routeStatic:
		return logging.LevelTrace, "request completed"
	case method == http.MethodGet || method == http.MethodHead:
		return slog.LevelDebug, "request completed"
	}
	return slog.LevelInfo, "request completed"
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
