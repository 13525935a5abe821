// Package simulation drives the climate step over a weather series and
// grows a crop from the simulated air temperature.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lox/greenhouse/internal/climate"
	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/greenhouse"
	"github.com/lox/greenhouse/internal/metrics"
	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/weather"
)

// DefaultStep is one hour, the resolution of the weather series.
const DefaultStep = 3600.0

// radiationMJ converts one hourly W/m2 reading into MJ/m2.
const radiationMJ = 0.0036

// Observer receives every step of a run with its full diagnostics.
type Observer func(step int, rec models.WeatherRecord, state climate.State, diag climate.Diagnostics)

type Options struct {
	Config *greenhouse.Config
	Crop   crop.Params

	AirInit float64
	TopInit float64
	RHInit  float64

	// DT is the step length in seconds; zero means DefaultStep.
	DT float64

	Observer Observer
	Log      logrus.FieldLogger
}

// Result is the outcome of a run. An unstable run carries no series and
// zero cycles and biomass.
type Result struct {
	Series   []Sample
	Cycles   float64
	Biomass  float64
	Yield    float64
	Unstable bool
	// FailedStep is the index of the diverging step of an unstable run.
	FailedStep int
}

// Run simulates the greenhouse over records. Numerical divergence is not
// an error: it yields a Result with Unstable set.
func Run(ctx context.Context, records []models.WeatherRecord, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	dt := opts.DT
	if dt == 0 {
		dt = DefaultStep
	}
	if opts.Config == nil {
		return Result{}, fmt.Errorf("simulation: no greenhouse config")
	}
	if err := opts.Config.Validate(); err != nil {
		return Result{}, err
	}
	if err := opts.Crop.Validate(); err != nil {
		return Result{}, fmt.Errorf("crop %s: %w", opts.Crop.Name, err)
	}
	if len(records) == 0 {
		return Result{}, weather.ErrEmptySeries
	}

	start := time.Now()
	defer func() {
		metrics.RunDuration.WithLabelValues(string(models.RunSimulate)).Observe(time.Since(start).Seconds())
	}()

	state := climate.Initial(opts.AirInit, opts.TopInit, opts.RHInit)
	g := newGrower(crop.NewState(opts.Crop), len(records))
	series := make([]Sample, 0, len(records))

	for i, rec := range records {
		if i%24 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		g.observe(i, rec)

		next, diag, err := climate.Step(opts.Config, state, exterior(rec), dt)
		if err != nil {
			metrics.RunsTotal.WithLabelValues(string(models.RunSimulate), "error").Inc()
			return Result{}, fmt.Errorf("step %d: %w", i, err)
		}
		metrics.StepsTotal.Inc()
		if opts.Observer != nil {
			opts.Observer(i, rec, next, diag)
		}
		if next.Unstable {
			metrics.RunsTotal.WithLabelValues(string(models.RunSimulate), "unstable").Inc()
			log.WithFields(logrus.Fields{
				"crop": opts.Crop.Name,
				"step": i,
				"time": rec.Time.Format(weather.TimestampLayout),
			}).Warn("simulation diverged")
			return Result{Unstable: true, FailedStep: i}, nil
		}

		state = next
		g.temps = append(g.temps, state.AirTemp)
		series = append(series, newSample(rec, state, g.crop.Biomass))
	}

	cycles, biomass := g.crop.Finalize()
	res := Result{
		Series:  series,
		Cycles:  cycles,
		Biomass: biomass,
		Yield:   g.crop.Yield(),
	}
	metrics.RunsTotal.WithLabelValues(string(models.RunSimulate), "ok").Inc()
	log.WithFields(logrus.Fields{
		"crop":    opts.Crop.Name,
		"records": len(records),
		"cycles":  res.Cycles,
		"biomass": res.Biomass,
	}).Info("simulation finished")
	return res, nil
}

func exterior(rec models.WeatherRecord) climate.Exterior {
	return climate.Exterior{
		Time:       rec.Time,
		Temp:       rec.Temperature,
		RH:         rec.Humidity,
		Pressure:   rec.Pressure,
		Solar:      rec.Solar,
		SolarAngle: rec.SolarAngle,
	}
}

// grower feeds the crop once per day from the previous 24 temperatures.
type grower struct {
	crop      *crop.State
	temps     []float64
	radiation float64
}

func newGrower(s *crop.State, n int) *grower {
	return &grower{crop: s, temps: make([]float64, 0, n)}
}

// observe accumulates the record's radiation and, at the first record of
// a new day, grows the crop over the day just ended.
func (g *grower) observe(i int, rec models.WeatherRecord) {
	g.radiation += rec.Solar * radiationMJ
	if i == 0 || rec.Time.Hour() != 0 {
		return
	}
	window := g.temps[max(0, i-24):i]
	g.crop.Day(g.radiation, stat.Mean(window, nil), floats.Max(window))
	g.radiation = 0
}
