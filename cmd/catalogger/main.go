package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lissto-dev/catalogger/internal/catalog"
	"github.com/lissto-dev/catalogger/pkg/config"
	"github.com/lissto-dev/catalogger/pkg/logging"
	"github.com/lissto-dev/catalogger/pkg/opm"
)

func main() {
	app := &cli.App{
		Name:      "catalogger",
		Usage:     "Process `schema: olm.*` YAML records into catalogs",
		ArgsUsage: "<input.yaml>...",
		Description: `Reads operator catalog sources and expands the _versions: section of every
olm.channel document into an entries: upgrade chain. Candidate bundle images
are generated from a pattern holding @@VERSION@@, walking patch levels from
"from" until "to" or until the failure budget is spent, and probed with
"opm render".

Example:
  catalogger --configs-out catalog/configs --cache-out catalog/cache operators/*.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (optional)",
				EnvVars: []string{"CATALOGGER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "configs-out",
				Usage:   "Directory receiving the rendered index.yaml",
				EnvVars: []string{"CATALOGGER_CONFIGS_OUT"},
			},
			&cli.StringFlag{
				Name:    "cache-out",
				Usage:   "Directory receiving the opm serve cache (optional)",
				EnvVars: []string{"CATALOGGER_CACHE_OUT"},
			},
			&cli.StringFlag{
				Name:    "opm",
				Usage:   "opm command line, e.g. \"podman run --rm quay.io/operator-framework/opm:latest\"",
				EnvVars: []string{"OPM"},
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: console or json",
			},
			&cli.BoolFlag{
				Name:  "skip-validate",
				Usage: "Do not run opm validate on the rendered catalog",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logging.Logger.Error("catalogger failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	inputs := c.Args().Slice()
	if len(inputs) == 0 {
		return cli.Exit("no input files given", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := logging.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Logger.Sync()

	logging.Logger = logging.Logger.With(zap.String("run_id", uuid.NewString()))
	log := logging.Logger

	runner, err := opm.NewRunner(cfg.Opm.Command)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := catalog.New(runner, log).Render(ctx, cfg.Output.ConfigsDir, inputs)
	if err != nil {
		return err
	}

	return catalog.PostProcess(ctx, runner, catalog.PostProcessOptions{
		ConfigsDir:   cfg.Output.ConfigsDir,
		CacheDir:     cfg.Output.CacheDir,
		SkipValidate: cfg.Opm.SkipValidate,
	}, log.With(zap.String("catalog", summary.Path)))
}

// loadConfig applies flags and environment on top of the configuration file
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("configs-out") {
		cfg.Output.ConfigsDir = c.String("configs-out")
	}
	if c.IsSet("cache-out") {
		cfg.Output.CacheDir = c.String("cache-out")
	}
	if c.IsSet("opm") {
		cfg.Opm.Command = c.String("opm")
	}
	if c.IsSet("log-format") {
		cfg.Logging.Format = c.String("log-format")
	}
	if c.Bool("skip-validate") {
		cfg.Opm.SkipValidate = true
	}
	if c.Bool("debug") {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
