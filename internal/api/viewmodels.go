package api

import (
	"encoding/json"
	"time"

	"github.com/lox/greenhouse/internal/models"
)

// runView is the JSON shape of a stored run.
type runView struct {
	ID         int64              `json:"id"`
	Kind       models.RunKind     `json:"kind"`
	Crop       string             `json:"crop,omitempty"`
	Source     string             `json:"source,omitempty"`
	Profile    map[string]float64 `json:"profile,omitempty"`
	Records    int                `json:"records"`
	Unstable   bool               `json:"unstable"`
	Cycles     float64            `json:"cycles"`
	Biomass    float64            `json:"biomass"`
	Yield      float64            `json:"yield"`
	Score      *float64           `json:"score,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func newRunView(r models.Run) runView {
	v := runView{
		ID:        r.ID,
		Kind:      r.Kind,
		Crop:      r.Crop,
		Source:    r.Source,
		Records:   r.Records,
		Unstable:  r.Unstable,
		Cycles:    r.Cycles,
		Biomass:   r.Biomass,
		Yield:     r.Yield,
		StartedAt: r.StartedAt,
		Error:     r.Error.String,
	}
	if r.Profile != "" {
		// Profiles are written by this program; a bad one is simply omitted.
		_ = json.Unmarshal([]byte(r.Profile), &v.Profile)
	}
	if r.Score.Valid {
		score := r.Score.Float64
		v.Score = &score
	}
	if r.FinishedAt.Valid {
		t := r.FinishedAt.Time
		v.FinishedAt = &t
	}
	return v
}

type trialView struct {
	Number   int                `json:"number"`
	Params   map[string]float64 `json:"params"`
	Value    float64            `json:"value"`
	Unstable bool               `json:"unstable"`
}

func newTrialView(t models.Trial) trialView {
	v := trialView{Number: t.Number, Value: t.Value, Unstable: t.Unstable}
	_ = json.Unmarshal([]byte(t.Params), &v.Params)
	return v
}

// IndexData is the view model for the run listing page.
type IndexData struct {
	Runs  []runView
	Crops []string
}
