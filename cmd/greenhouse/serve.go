package main

import (
	"context"
	"errors"

	"github.com/lox/greenhouse/internal/api"
)

type ServeCmd struct {
	Port string `help:"HTTP server port." default:"8080" env:"PORT"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	if g.Store == nil {
		return errors.New("serve needs --db")
	}
	return api.NewServer(g.Store, c.Port, g.Catalog, g.Log).Run(ctx)
}
