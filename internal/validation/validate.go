package validation

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/lox/greenhouse/internal/analysis"
	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/greenhouse"
	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/simulation"
)

// Row pairs a simulated sample with the logger readings of the same hour.
// Missing readings are NaN.
type Row struct {
	simulation.Sample
	ObservedAir     float64 `csv:"air_temp" json:"air_temp"`
	ObservedTop     float64 `csv:"top_temp" json:"top_temp"`
	ObservedCrop    float64 `csv:"croplvl_temp" json:"croplvl_temp"`
	ObservedOutside float64 `csv:"outside_temp" json:"outside_temp"`
	Difference      float64 `csv:"difference" json:"difference"`
}

type Result struct {
	Rows     []Row
	AirRMSE  float64
	TopRMSE  float64
	Score    float64
	Unstable bool
}

type Options struct {
	Config *greenhouse.Config
	Crop   crop.Params
	Log    logrus.FieldLogger
}

// Run simulates the dataset from its first recorded state and scores the
// result. A diverging configuration returns Unstable with no rows.
func Run(ctx context.Context, d *Dataset, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	records, err := d.Weather()
	if err != nil {
		return Result{}, err
	}
	air, top, rh, err := d.Initial()
	if err != nil {
		return Result{}, err
	}

	sim, err := simulation.Run(ctx, records, simulation.Options{
		Config:  opts.Config,
		Crop:    opts.Crop,
		AirInit: air,
		TopInit: top,
		RHInit:  rh,
		Log:     log,
	})
	if err != nil {
		return Result{}, err
	}
	if sim.Unstable {
		return Result{Unstable: true, Score: math.Inf(1)}, nil
	}

	byTime := make(map[time.Time]models.SensorReading, len(d.Readings))
	for _, r := range d.Readings {
		byTime[r.Time] = r
	}

	res := Result{Rows: make([]Row, len(sim.Series))}
	airObs := make([]float64, len(sim.Series))
	airSim := make([]float64, len(sim.Series))
	topObs := make([]float64, len(sim.Series))
	topSim := make([]float64, len(sim.Series))
	for i, s := range sim.Series {
		r := byTime[s.Time.Time]
		row := Row{
			Sample:          s,
			ObservedAir:     value(r.AirTemp.Float64, r.AirTemp.Valid),
			ObservedTop:     value(r.TopTemp.Float64, r.TopTemp.Valid),
			ObservedCrop:    value(r.CropTemp.Float64, r.CropTemp.Valid),
			ObservedOutside: value(r.OutsideTemp.Float64, r.OutsideTemp.Valid),
		}
		row.Difference = row.ObservedAir - s.AirTemp
		res.Rows[i] = row

		airObs[i], airSim[i] = row.ObservedAir, s.AirTemp
		topObs[i], topSim[i] = row.ObservedTop, s.TopTemp
	}

	if res.AirRMSE, err = analysis.RMSE(airObs, airSim); err != nil {
		return Result{}, fmt.Errorf("air: %w", err)
	}
	if res.TopRMSE, err = analysis.RMSE(topObs, topSim); err != nil {
		return Result{}, fmt.Errorf("top: %w", err)
	}
	res.Score = res.AirRMSE + res.TopRMSE

	log.WithFields(logrus.Fields{
		"rows":     len(res.Rows),
		"air_rmse": res.AirRMSE,
		"top_rmse": res.TopRMSE,
	}).Info("validation finished")
	return res, nil
}

func value(v float64, ok bool) float64 {
	if !ok {
		return math.NaN()
	}
	return v
}

// WriteCSV encodes the validation rows.
func WriteCSV(w io.Writer, rows []Row) error {
	return gocsv.Marshal(rows, w)
}
