package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lox/greenhouse/internal/greenhouse"
)

type CropsCmd struct{}

func (c *CropsCmd) Run(g *Globals) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CROP\tTSUM\tHI\tTBASE\tTOPT\tRUE")
	for _, name := range g.Catalog.Names() {
		p := g.Catalog[name]
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\n", p.Name, p.ThermalTimeSum, p.HarvestIndex, p.BaseTemp, p.OptimalTemp, p.RUE)
	}
	return w.Flush()
}

type ParamsCmd struct {
	ProfileFlags

	Out string `short:"o" help:"Write the profile to this file; - for stdout." default:"-"`
}

func (c *ParamsCmd) Run(g *Globals) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	out, err := createOutput(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()
	return greenhouse.WriteProfile(out, cfg)
}
