package main

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/validation"
)

// DatasetFlags locate one validation dataset.
type DatasetFlags struct {
	Dir      string  `arg:"" help:"Directory holding 1.csv to 4.csv, the exterior export and solar_angle.csv." type:"existingdir"`
	Exterior string  `help:"Exterior export file name within the directory." default:"exterior.csv"`
	Pressure float64 `help:"Constant station pressure (hPa)." default:"721"`
}

func (f *DatasetFlags) load(ctx context.Context, g *Globals) (*validation.Dataset, error) {
	d, err := validation.Load(ctx, g.Fetcher, validation.DirFiles(f.Dir, f.Exterior))
	if err != nil {
		return nil, err
	}
	d.Pressure = f.Pressure
	return d, nil
}

type ValidateCmd struct {
	ProfileFlags
	CropFlags
	DatasetFlags

	Out string `short:"o" help:"Output CSV pairing simulated and observed temperatures; - for stdout." default:"-"`
}

func (c *ValidateCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := c.Config()
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

	rec, err := g.startRun(&models.Run{
		Kind:    models.RunValidate,
		Crop:    p.Name,
		Source:  c.Dir,
		Profile: profileJSON(cfg),
	})
	if err != nil {
		return err
	}

	res, err := validation.Run(ctx, d, validation.Options{Config: cfg, Crop: p, Log: g.Log})
	if err != nil {
		return rec.finish(err)
	}
	rec.run.Records = len(res.Rows)
	rec.run.Unstable = res.Unstable
	rec.score(res.Score)

	g.Log.WithFields(logrus.Fields{
		"air_rmse": res.AirRMSE,
		"top_rmse": res.TopRMSE,
		"score":    res.Score,
		"unstable": res.Unstable,
	}).Info("Validation finished")

	if res.Unstable {
		return rec.finish(nil)
	}

	write := func(w io.Writer) error { return validation.WriteCSV(w, res.Rows) }
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
