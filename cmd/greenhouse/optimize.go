package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/greenhouse"
	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/optimize"
)

type OptimizeCmd struct {
	Design      OptimizeDesignCmd      `cmd:"" help:"Search construction parameters for the most harvest cycles."`
	Comfort     OptimizeComfortCmd     `cmd:"" help:"Search construction parameters keeping the air in the crop's temperature band."`
	Calibration OptimizeCalibrationCmd `cmd:"" help:"Fit empirical coefficients to recorded sensor data."`
}

// SearchFlags control the parameter search.
type SearchFlags struct {
	Trials      int      `help:"Number of trials to evaluate." default:"200"`
	Concurrency int      `help:"Concurrent trials; 0 uses every CPU." default:"0"`
	Bound       []string `help:"Replace the default bounds, key=lo:hi. Repeatable." placeholder:"KEY=LO:HI"`
	Save        string   `help:"Write the best profile to this file."`
}

func (f *SearchFlags) bounds(defaults []optimize.Bound) ([]optimize.Bound, error) {
	if len(f.Bound) == 0 {
		return defaults, nil
	}
	out := make([]optimize.Bound, 0, len(f.Bound))
	for _, s := range f.Bound {
		b, err := optimize.ParseBound(s)
		if err != nil {
			return nil, err
		}
		if b.Key == greenhouse.KeyBottles {
			b.Integer = true
		}
		out = append(out, b)
	}
	return out, nil
}

// search runs obj over the bounds, recording the run and its trials.
func (f *SearchFlags) search(ctx context.Context, g *Globals, base *greenhouse.Config, p crop.Params, source string, defaults []optimize.Bound, obj optimize.Objective) error {
	bounds, err := f.bounds(defaults)
	if err != nil {
		return err
	}

	rec, err := g.startRun(&models.Run{
		Kind:    models.RunOptimize,
		Crop:    p.Name,
		Source:  source,
		Profile: profileJSON(base),
	})
	if err != nil {
		return err
	}

	s := &optimize.Search{
		Base:        base,
		Bounds:      bounds,
		Objective:   obj,
		Trials:      f.Trials,
		Concurrency: f.Concurrency,
		Log:         g.Log,
		OnTrial: func(t optimize.Trial) error {
			return rec.trial(t.Number, t.Params, t.Value, t.Unstable)
		},
	}
	best, err := s.Run(ctx)
	if err != nil {
		return rec.finish(err)
	}
	rec.run.Records = best.Trials
	rec.run.Profile = profileJSON(best.Config)
	rec.score(best.Trial.Value)

	fields := logrus.Fields{"objective": obj.Name(), "value": best.Trial.Value, "trials": best.Trials}
	for k, v := range best.Trial.Params {
		fields[k] = v
	}
	g.Log.WithFields(fields).Info("Search finished")

	if f.Save != "" {
		if err := greenhouse.SaveProfile(f.Save, best.Config); err != nil {
			return rec.finish(err)
		}
	}
	for _, b := range bounds {
		fmt.Printf("%s=%g\n", b.Key, best.Trial.Params[b.Key])
	}
	fmt.Printf("%s=%g\n", obj.Name(), best.Trial.Value)
	return rec.finish(nil)
}

type OptimizeDesignCmd struct {
	ProfileFlags
	CropFlags
	WeatherFlags
	SearchFlags
}

func (c *OptimizeDesignCmd) Run(ctx context.Context, g *Globals) error {
	base, err := c.Config()
	if err != nil {
		return err
	}
	p, err := c.Params(g.Catalog)
	if err != nil {
		return err
	}
	records, err := g.Fetcher.Load(ctx, c.format(), c.Weather...)
	if err != nil {
		return err
	}
	obj := &optimize.Cycles{Weather: records, Crop: p}
	return c.search(ctx, g, base, p, strings.Join(c.Weather, ","), optimize.DesignBounds, obj)
}

type OptimizeComfortCmd struct {
	ProfileFlags
	CropFlags
	WeatherFlags
	SearchFlags
}

func (c *OptimizeComfortCmd) Run(ctx context.Context, g *Globals) error {
	base, err := c.Config()
	if err != nil {
		return err
	}
	p, err := c.Params(g.Catalog)
	if err != nil {
		return err
	}
	records, err := g.Fetcher.Load(ctx, c.format(), c.Weather...)
	if err != nil {
		return err
	}
	obj, err := optimize.NewComfort(records, p)
	if err != nil {
		return err
	}
	return c.search(ctx, g, base, p, strings.Join(c.Weather, ","), optimize.DesignBounds, obj)
}

type OptimizeCalibrationCmd struct {
	ProfileFlags
	CropFlags
	DatasetFlags
	SearchFlags
}

func (c *OptimizeCalibrationCmd) Run(ctx context.Context, g *Globals) error {
	base, err := c.Config()
	if err != nil {
		return err
	}
	p, err := c.Params(g.Catalog)
	if err != nil {
		return err
	}
	d, err := c.load(ctx, g)
	if err != nil {
		return err
	}
	obj := &optimize.Calibration{Dataset: d, Crop: p}
	return c.search(ctx, g, base, p, c.Dir, optimize.CalibrationBounds, obj)
}
