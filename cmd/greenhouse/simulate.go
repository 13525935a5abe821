package main

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/simulation"
)

type SimulateCmd struct {
	ProfileFlags
	CropFlags
	InitFlags
	WeatherFlags

	DT  float64 `name:"dt" help:"Step length in seconds." default:"3600"`
	Out string  `short:"o" help:"Output CSV of the simulated series; - for stdout." default:"-"`
}

func (c *SimulateCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := c.Config()
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

	rec, err := g.startRun(&models.Run{
		Kind:    models.RunSimulate,
		Crop:    p.Name,
		Source:  strings.Join(c.Weather, ","),
		Profile: profileJSON(cfg),
	})
	if err != nil {
		return err
	}

	air, top, rh := c.resolve(records[0])
	res, err := simulation.Run(ctx, records, simulation.Options{
		Config:  cfg,
		Crop:    p,
		AirInit: air,
		TopInit: top,
		RHInit:  rh,
		DT:      c.DT,
		Log:     g.Log,
	})
	if err != nil {
		return rec.finish(err)
	}

	rec.run.Records = len(records)
	rec.run.Unstable = res.Unstable
	rec.run.Cycles = res.Cycles
	rec.run.Biomass = res.Biomass
	rec.run.Yield = res.Yield

	g.Log.WithFields(logrus.Fields{
		"crop":     p.Name,
		"cycles":   res.Cycles,
		"biomass":  res.Biomass,
		"yield":    res.Yield,
		"unstable": res.Unstable,
	}).Info("Simulation finished")

	if res.Unstable {
		return rec.finish(nil)
	}

	write := func(w io.Writer) error { return simulation.WriteCSV(w, res.Series) }
	out, err := createOutput(c.Out)
	if err != nil {
		return rec.finish(err)
	}
	if err := write(out); err != nil {
		out.Close()
		return rec.finish(err)
	}
	if err := out.Close(); err != nil {
		return rec.finish(err)
	}
	if err := rec.series(write); err != nil {
		return rec.finish(err)
	}
	return rec.finish(nil)
}
