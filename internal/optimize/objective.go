package optimize

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lox/greenhouse/internal/analysis"
	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/greenhouse"
	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/simulation"
	"github.com/lox/greenhouse/internal/validation"
)

// Objective scores one configuration; lower is better. An unstable
// configuration reports unstable and its value is ignored.
type Objective interface {
	Name() string
	Evaluate(ctx context.Context, cfg *greenhouse.Config) (value float64, unstable bool, err error)
}

// quiet keeps per-trial run logs out of the search output.
var quiet = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}()

// Cycles maximises completed harvest cycles over a weather series.
type Cycles struct {
	Weather []models.WeatherRecord
	Crop    crop.Params
}

func (c *Cycles) Name() string { return "cycles" }

func (c *Cycles) Evaluate(ctx context.Context, cfg *greenhouse.Config) (float64, bool, error) {
	res, err := simulation.Run(ctx, c.Weather, runOptions(cfg, c.Crop, c.Weather))
	if err != nil {
		return 0, false, err
	}
	return -res.Cycles, res.Unstable, nil
}

// Band is a crop's preferred air temperature range by day and night.
type Band struct {
	DayMin, DayMax     float64
	NightMin, NightMax float64
}

// ComfortBands lists the crops with known day and night targets.
var ComfortBands = map[string]Band{
	"Tomato":  {DayMin: 21, DayMax: 27, NightMin: 16, NightMax: 18},
	"Lettuce": {DayMin: 15, DayMax: 20, NightMin: 10, NightMax: 15},
}

// Comfort minimises the distance of the air temperature from the crop's
// day and night band. Day runs from 06:00 to 18:00.
type Comfort struct {
	Weather []models.WeatherRecord
	Crop    crop.Params
	Band    Band
}

// NewComfort looks up the band for the crop.
func NewComfort(records []models.WeatherRecord, p crop.Params) (*Comfort, error) {
	band, ok := ComfortBands[p.Name]
	if !ok {
		return nil, fmt.Errorf("no comfort band for crop %s", p.Name)
	}
	return &Comfort{Weather: records, Crop: p, Band: band}, nil
}

func (c *Comfort) Name() string { return "comfort" }

func (c *Comfort) Evaluate(ctx context.Context, cfg *greenhouse.Config) (float64, bool, error) {
	res, err := simulation.Run(ctx, c.Weather, runOptions(cfg, c.Crop, c.Weather))
	if err != nil {
		return 0, false, err
	}
	if res.Unstable {
		return 0, true, nil
	}

	var day, night []float64
	for _, s := range res.Series {
		if h := s.Time.Hour(); h >= 6 && h < 18 {
			day = append(day, s.AirTemp)
		} else {
			night = append(night, s.AirTemp)
		}
	}
	return analysis.BandDeviation(day, c.Band.DayMin, c.Band.DayMax) +
		analysis.BandDeviation(night, c.Band.NightMin, c.Band.NightMax), false, nil
}

// Calibration minimises the validation score against logger data.
type Calibration struct {
	Dataset *validation.Dataset
	Crop    crop.Params
}

func (c *Calibration) Name() string { return "calibration" }

func (c *Calibration) Evaluate(ctx context.Context, cfg *greenhouse.Config) (float64, bool, error) {
	res, err := validation.Run(ctx, c.Dataset, validation.Options{Config: cfg, Crop: c.Crop, Log: quiet})
	if err != nil {
		return 0, false, err
	}
	return res.Score, res.Unstable, nil
}

// runOptions starts the greenhouse at the first exterior reading.
func runOptions(cfg *greenhouse.Config, p crop.Params, records []models.WeatherRecord) simulation.Options {
	opts := simulation.Options{Config: cfg, Crop: p, Log: quiet}
	if len(records) > 0 {
		opts.AirInit = records[0].Temperature
		opts.TopInit = records[0].Temperature
		opts.RHInit = records[0].Humidity
	}
	return opts
}
