package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/simulation"
)

type BaselineCmd struct {
	CropFlags
	WeatherFlags
}

func (c *BaselineCmd) Run(ctx context.Context, g *Globals) error {
	p, err := c.Params(g.Catalog)
	if err != nil {
		return err
	}
	records, err := g.Fetcher.Load(ctx, c.format(), c.Weather...)
	if err != nil {
		return err
	}

	rec, err := g.startRun(&models.Run{
		Kind:   models.RunBaseline,
		Crop:   p.Name,
		Source: strings.Join(c.Weather, ","),
	})
	if err != nil {
		return err
	}

	b := simulation.OpenField(records, p)
	rec.run.Records = len(records)
	rec.run.Cycles = b.Cycles
	rec.run.Biomass = b.Biomass
	rec.run.Yield = b.Yield

	fmt.Printf("crop=%s cycles=%.3f biomass=%.3f yield=%.3f\n", p.Name, b.Cycles, b.Biomass, b.Yield)
	return rec.finish(nil)
}
