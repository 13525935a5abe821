// Package api serves stored runs over HTTP.
package api

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/store"
)

type Server struct {
	store   *store.Store
	port    string
	catalog crop.Catalog
	tmpl    *template.Template
	log     logrus.FieldLogger
}

func NewServer(store *store.Store, port string, catalog crop.Catalog, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		store:   store,
		port:    port,
		catalog: catalog,
		tmpl:    newTemplates(),
		log:     log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/crops", s.handleAPICrops)
	mux.HandleFunc("GET /api/runs", s.handleAPIRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleAPIRun)
	mux.HandleFunc("GET /api/runs/{id}/trials", s.handleAPITrials)
	mux.HandleFunc("GET /api/runs/{id}/series", s.handleAPISeries)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.WithField("port", s.port).Info("Serving runs")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status        string `json:"status"`
	SchemaVersion int    `json:"schema_version"`
	Error         string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{Status: "ok"}
	version, err := s.store.MigrationVersion()
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
	}
	health.SchemaVersion = version

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.log.WithError(err).Warn("health: write response")
	}
}
