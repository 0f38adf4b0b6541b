package status

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"asset-browser/internal/logging"
	"asset-browser/internal/queue"
	"asset-browser/internal/records"
	"asset-browser/internal/startup"
	"asset-browser/internal/worker"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
)

// Server exposes the pipeline's health, progress and metrics over HTTP. It
// is strictly read-only: nothing it serves mutates queue or record state.
type Server struct {
	monitor *worker.Monitor
	coll    *records.Collection
	queues  []*queue.Unique

	metricsEnabled  bool
	logHealthChecks bool

	startTime time.Time
	ready     atomic.Bool

	srv *http.Server
}

// New returns a status server listening on the given port.
func New(port string, monitor *worker.Monitor, coll *records.Collection, queues []*queue.Unique, metricsEnabled, logHealthChecks bool) *Server {
	s := &Server{
		monitor:         monitor,
		coll:            coll,
		queues:          queues,
		metricsEnabled:  metricsEnabled,
		logHealthChecks: logHealthChecks,
		startTime:       time.Now(),
	}
	s.srv = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// SetReady marks the initial scan complete; /readyz starts returning 200.
func (s *Server) SetReady() { s.ready.Store(true) }

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	r.HandleFunc("/healthz", s.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/livez", s.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", s.ReadinessCheck).Methods("GET")
	r.HandleFunc("/api/progress", s.Progress).Methods("GET")
	r.HandleFunc("/api/version", s.VersionInfo).Methods("GET")

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	return r
}

// Run starts serving and blocks until the server is shut down.
func (s *Server) Run() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Progress info
	Pending     int  `json:"pending"`
	Records     int  `json:"records"`
	FullyLoaded bool `json:"fullyLoaded"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// LivenessCheck is a simple liveness probe (always returns 200 if the
// server is running)
func (s *Server) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only once the initial scan has completed
func (s *Server) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.ready.Load() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}

// ProgressResponse describes the pipeline's outstanding work.
type ProgressResponse struct {
	Pending     int            `json:"pending"`
	Text        string         `json:"text"`
	Queues      map[string]int `json:"queues"`
	Records     int            `json:"records"`
	Generation  uint64         `json:"generation"`
	FullyLoaded bool           `json:"fullyLoaded"`
}

// Progress reports per-queue depth and the aggregate progress label.
func (s *Server) Progress(w http.ResponseWriter, _ *http.Request) {
	depths := make(map[string]int, len(s.queues))
	for _, q := range s.queues {
		depths[q.Name()] = q.Len()
	}

	response := ProgressResponse{
		Pending:     s.monitor.PendingCount(),
		Text:        s.monitor.Text(),
		Queues:      depths,
		Records:     s.coll.Len(),
		Generation:  s.coll.Generation(),
		FullyLoaded: s.coll.FullyLoaded(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// VersionInfo returns build and runtime information plus a coarse health
// summary.
func (s *Server) VersionInfo(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Ready:        s.ready.Load(),
		Version:      startup.Version,
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
		Pending:      s.monitor.PendingCount(),
		Records:      s.coll.Len(),
		FullyLoaded:  s.coll.FullyLoaded(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if response.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

var healthCheckPaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// requestLogger logs requests at debug level, optionally skipping health
// probes which otherwise dominate the log.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.logHealthChecks && healthCheckPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}
