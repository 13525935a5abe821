package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/models"
)

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response")
	}
}

// runFromPath loads the run named by the {id} path segment, writing an
// error response when it cannot.
func (s *Server) runFromPath(w http.ResponseWriter, r *http.Request) (*models.Run, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return nil, false
	}
	run, err := s.store.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if run == nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return nil, false
	}
	return run, true
}

func (s *Server) handleAPICrops(w http.ResponseWriter, r *http.Request) {
	crops := make([]crop.Params, 0, len(s.catalog))
	for _, name := range s.catalog.Names() {
		crops = append(crops, s.catalog[name])
	}
	s.writeJSON(w, crops)
}

func (s *Server) handleAPIRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(models.RunKind(r.URL.Query().Get("kind")), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunView(run))
	}
	s.writeJSON(w, views)
}

func (s *Server) handleAPIRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runFromPath(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, newRunView(*run))
}

func (s *Server) handleAPITrials(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runFromPath(w, r)
	if !ok {
		return
	}
	trials, err := s.store.GetTrials(run.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]trialView, 0, len(trials))
	for _, t := range trials {
		views = append(views, newTrialView(t))
	}
	s.writeJSON(w, views)
}

func (s *Server) handleAPISeries(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runFromPath(w, r)
	if !ok {
		return
	}
	payload, format, err := s.store.GetSeries(run.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if payload == nil {
		http.Error(w, "no series stored for run", http.StatusNotFound)
		return
	}
	contentType := "text/csv"
	if format == "json" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(payload)
}
