package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/store"
	"github.com/lox/greenhouse/internal/weather"
)

type CLI struct {
	LogLevel  string `help:"Log level." default:"info" enum:"debug,info,warn,error" env:"GREENHOUSE_LOG_LEVEL"`
	LogFormat string `help:"Log output format." default:"text" enum:"text,json" env:"GREENHOUSE_LOG_FORMAT"`
	DB        string `help:"SQLite database recording runs. Empty disables recording." env:"GREENHOUSE_DB"`
	Catalog   string `help:"Crop catalog YAML replacing the built-in catalog." type:"existingfile" env:"GREENHOUSE_CATALOG"`

	Simulate SimulateCmd `cmd:"" help:"Simulate the greenhouse over a weather series."`
	Baseline BaselineCmd `cmd:"" help:"Grow the crop in the open field over a weather series."`
	Validate ValidateCmd `cmd:"" help:"Compare a simulation against recorded sensor data."`
	Optimize OptimizeCmd `cmd:"" help:"Search greenhouse parameters."`
	Crops    CropsCmd    `cmd:"" help:"List the crop catalog."`
	Params   ParamsCmd   `cmd:"" help:"Print the effective greenhouse profile."`
	Serve    ServeCmd    `cmd:"" help:"Serve recorded runs over HTTP."`
}

// Globals is shared by every command.
type Globals struct {
	Log     *logrus.Logger
	Catalog crop.Catalog
	Fetcher *weather.Fetcher
	Store   *store.Store
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("greenhouse"),
		kong.Description("Passive solar greenhouse simulator."),
		kong.UsageOnError(),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, closeDB, err := cli.globals()
	if err != nil {
		fmt.Fprintln(os.Stderr, "greenhouse:", err)
		os.Exit(1)
	}
	defer closeDB()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(g)
	if err != nil {
		g.Log.WithError(err).Error("Command failed")
		closeDB()
		os.Exit(1)
	}
}

func (c *CLI) globals() (*Globals, func(), error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(log.Formatter)

	g := &Globals{
		Log:     log,
		Catalog: crop.Default(),
		Fetcher: weather.NewFetcher(log),
	}
	if c.Catalog != "" {
		if g.Catalog, err = crop.LoadCatalog(c.Catalog); err != nil {
			return nil, nil, err
		}
	}

	closeDB := func() {}
	if c.DB != "" {
		db, err := sql.Open("sqlite", c.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")

		g.Store = store.New(db)
		if err := g.Store.Migrate(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		closeDB = func() { db.Close() }
	}
	return g, closeDB, nil
}
