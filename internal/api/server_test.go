package api_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lox/greenhouse/internal/api"
	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/store"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := store.New(db)
	if err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	return s
}

func get(t *testing.T, srv *api.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv := api.NewServer(setupTestStore(t), "8080", crop.Default(), nil)

	w := get(t, srv, "/health")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var health api.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.SchemaVersion == 0 {
		t.Errorf("health = %+v", health)
	}
}

func TestCropsEndpoint(t *testing.T) {
	t.Parallel()
	srv := api.NewServer(setupTestStore(t), "8080", crop.Default(), nil)

	w := get(t, srv, "/api/crops")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var crops []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&crops); err != nil {
		t.Fatal(err)
	}
	if len(crops) != len(crop.Default()) {
		t.Errorf("got %d crops, want %d", len(crops), len(crop.Default()))
	}
	if crops[0]["name"] != "Carrot" {
		t.Errorf("first crop = %v, want Carrot", crops[0]["name"])
	}
}

func TestRunEndpoints(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8080", crop.Default(), nil)

	run := &models.Run{Kind: models.RunOptimize, Crop: "Tomato", Profile: `{"vent_rate":0.001}`}
	if err := s.StartRun(run); err != nil {
		t.Fatal(err)
	}
	run.Score = sql.NullFloat64{Float64: -4, Valid: true}
	if err := s.CompleteRun(run); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertTrial(models.Trial{RunID: run.ID, Number: 1, Params: `{"vent_rate":0.001}`, Value: -4}); err != nil {
		t.Fatal(err)
	}

	w := get(t, srv, "/api/runs")
	if w.Code != 200 {
		t.Fatalf("runs: expected 200, got %d", w.Code)
	}
	var runs []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0]["kind"] != "optimize" {
		t.Fatalf("runs = %v", runs)
	}

	w = get(t, srv, "/api/runs?kind=simulate")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("filtered runs = %s, want []", w.Body.String())
	}

	w = get(t, srv, "/api/runs/1")
	if w.Code != 200 {
		t.Fatalf("run: expected 200, got %d", w.Code)
	}
	var one map[string]any
	if err := json.NewDecoder(w.Body).Decode(&one); err != nil {
		t.Fatal(err)
	}
	if one["score"] != -4.0 {
		t.Errorf("score = %v, want -4", one["score"])
	}
	if profile, _ := one["profile"].(map[string]any); profile["vent_rate"] != 0.001 {
		t.Errorf("profile = %v", one["profile"])
	}

	w = get(t, srv, "/api/runs/1/trials")
	if w.Code != 200 {
		t.Fatalf("trials: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"number":1`) {
		t.Errorf("trials = %s", w.Body.String())
	}
}

func TestRunNotFound(t *testing.T) {
	t.Parallel()
	srv := api.NewServer(setupTestStore(t), "8080", crop.Default(), nil)

	for path, want := range map[string]int{
		"/api/runs/99":        404,
		"/api/runs/abc":       400,
		"/api/runs/99/trials": 404,
		"/api/runs/99/series": 404,
		"/api/runs?limit=x":   400,
	} {
		if w := get(t, srv, path); w.Code != want {
			t.Errorf("%s: got %d, want %d", path, w.Code, want)
		}
	}
}

func TestSeriesEndpoint(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8080", crop.Default(), nil)

	run := &models.Run{Kind: models.RunSimulate}
	if err := s.StartRun(run); err != nil {
		t.Fatal(err)
	}
	if _, err := s.StoreSeries(run.ID, "csv", []byte("time,gh_t_air\n")); err != nil {
		t.Fatal(err)
	}

	w := get(t, srv, "/api/runs/1/series")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.String() != "time,gh_t_air\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8080", crop.Default(), nil)

	w := get(t, srv, "/")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No runs recorded yet.") {
		t.Error("expected empty state")
	}

	if err := s.StartRun(&models.Run{Kind: models.RunBaseline, Crop: "Potato"}); err != nil {
		t.Fatal(err)
	}
	w = get(t, srv, "/")
	body := w.Body.String()
	if !strings.Contains(body, `id="runs"`) || !strings.Contains(body, "Potato") {
		t.Error("expected runs table with Potato")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv := api.NewServer(setupTestStore(t), "8080", crop.Default(), nil)

	w := get(t, srv, "/metrics")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected Go runtime metrics")
	}
}
