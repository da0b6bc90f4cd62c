// Package api exposes the HTTP interface for the posting service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/pipeline"
)

// Deps are the read-only views the endpoints report on.
type Deps struct {
	Status     *pipeline.Status
	Sources    []string
	Schedule   string
	CacheLen   func() int
	LedgerSize func() int
}

// Server wires HTTP handlers to the pipeline's status views.
type Server struct {
	router chi.Router
	deps   Deps
	logger *zap.Logger
}

func NewServer(deps Deps, logger *zap.Logger) *Server {
	s := &Server{deps: deps, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

type healthResponse struct {
	Status     string          `json:"status"`
	Schedule   string          `json:"schedule"`
	Sources    int             `json:"sources"`
	CachedSets int             `json:"cached_sets"`
	Posted     int             `json:"posted"`
	Runs       pipeline.Status `json:"runs"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Schedule: s.deps.Schedule,
		Sources:  len(s.deps.Sources),
	}
	if s.deps.CacheLen != nil {
		resp.CachedSets = s.deps.CacheLen()
	}
	if s.deps.LedgerSize != nil {
		resp.Posted = s.deps.LedgerSize()
	}
	if s.deps.Status != nil {
		resp.Runs = s.deps.Status.Snapshot()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response write failed", zap.Error(err))
	}
}
