package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/greenhouse"
	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/weather"
)

// ProfileFlags select the greenhouse configuration.
type ProfileFlags struct {
	Profile string             `help:"Greenhouse profile JSON. Empty uses the built-in default." type:"existingfile" env:"GREENHOUSE_PROFILE"`
	Set     map[string]float64 `help:"Override a profile parameter, key=value. Repeatable." placeholder:"KEY=VALUE"`
}

func (f *ProfileFlags) Config() (*greenhouse.Config, error) {
	cfg := greenhouse.Default()
	if f.Profile != "" {
		var err error
		if cfg, err = greenhouse.LoadProfile(f.Profile, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyOverrides(f.Set); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CropFlags name the crop.
type CropFlags struct {
	Crop string `help:"Crop to grow." default:"Lettuce" env:"GREENHOUSE_CROP"`
}

func (f *CropFlags) Params(c crop.Catalog) (crop.Params, error) {
	return c.Lookup(f.Crop)
}

// WeatherFlags locate the exterior weather series.
type WeatherFlags struct {
	Weather []string `arg:"" name:"weather" help:"Weather sources: paths or file://, http(s)://, ftp:// URLs, concatenated in order."`
	Format  string   `help:"Weather CSV layout." default:"auto" enum:"auto,nrel,canonical"`
}

func (f *WeatherFlags) format() weather.Format { return weather.Format(f.Format) }

// InitFlags set the starting greenhouse state. Unset values start from
// the first exterior record.
type InitFlags struct {
	AirInit *float64 `help:"Initial greenhouse air temperature (C)."`
	TopInit *float64 `help:"Initial roof air temperature (C)."`
	RHInit  *float64 `name:"rh-init" help:"Initial relative humidity (%)."`
}

func (f *InitFlags) resolve(first models.WeatherRecord) (air, top, rh float64) {
	air, top, rh = first.Temperature, first.Temperature, first.Humidity
	if f.AirInit != nil {
		air = *f.AirInit
	}
	if f.TopInit != nil {
		top = *f.TopInit
	}
	if f.RHInit != nil {
		rh = *f.RHInit
	}
	return air, top, rh
}

// createOutput opens path for writing; "-" and "" are stdout.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func profileJSON(cfg *greenhouse.Config) string {
	b, err := json.Marshal(cfg.Params())
	if err != nil {
		return ""
	}
	return string(b)
}

// recorder stores a run when a database is configured and is a no-op
// otherwise.
type recorder struct {
	g   *Globals
	run *models.Run
}

func (g *Globals) startRun(run *models.Run) (*recorder, error) {
	r := &recorder{g: g, run: run}
	if g.Store == nil {
		return r, nil
	}
	if err := g.Store.StartRun(run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	g.Log.WithField("run", run.ID).Debug("Recording run")
	return r, nil
}

func (r *recorder) score(v float64) {
	r.run.Score = sql.NullFloat64{Float64: v, Valid: true}
}

// finish completes the run, storing err as its failure when set.
func (r *recorder) finish(err error) error {
	if r.g.Store == nil {
		return err
	}
	if err != nil {
		if ferr := r.g.Store.FailRun(r.run, err); ferr != nil {
			r.g.Log.WithError(ferr).Warn("Failed to record run failure")
		}
		return err
	}
	return r.g.Store.CompleteRun(r.run)
}

// series stores the CSV produced by write alongside the run.
func (r *recorder) series(write func(io.Writer) error) error {
	if r.g.Store == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	_, err := r.g.Store.StoreSeries(r.run.ID, "csv", buf.Bytes())
	return err
}

func (r *recorder) trial(number int, params map[string]float64, value float64, unstable bool) error {
	if r.g.Store == nil {
		return nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return r.g.Store.InsertTrial(models.Trial{
		RunID:    r.run.ID,
		Number:   number,
		Params:   string(b),
		Value:    value,
		Unstable: unstable,
	})
}
