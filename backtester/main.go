package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/uuid"
	"github.com/joho/godotenv"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/config"
	"github.com/thrasher-corp/gct-pairs/backtester/engine"
	"github.com/thrasher-corp/gct-pairs/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var (
	configPath   string
	envFile      string
	outputFormat string
	outputPath   string
	listen       string
	perPair      bool

	errUnknownOutputFormat = errors.New("unknown output format")
)

func main() {
	app := cli.NewApp()
	app.Name = "pairs"
	app.Usage = "cointegration scanner and pairs trading backtester"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "yaml or json config file, PAIRS_ environment variables are used when empty",
			EnvVars:     []string{"PAIRS_CONFIG"},
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "env-file",
			Value:       ".env",
			Usage:       "dotenv file loaded before the config, ignored when missing",
			Destination: &envFile,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Value:       "json",
			Usage:       "report format: json or yaml",
			Destination: &outputFormat,
		},
		&cli.StringFlag{
			Name:        "out",
			Usage:       "write the report to this file instead of stdout",
			Destination: &outputPath,
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "scan",
			Usage:  "test every candidate over the formation window and report the selection",
			Action: runTask("scan", scan),
		},
		{
			Name:   "backtest",
			Usage:  "scan then simulate the selected pairs over the trading window",
			Action: runTask("backtest", backtest),
		},
		{
			Name:  "optimise",
			Usage: "search the configured entry and exit threshold grid",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "per-pair",
					Usage:       "search the grid for each selected pair on its own and backtest with every pair at its best thresholds",
					Destination: &perPair,
				},
			},
			Action: runTask("optimise", optimise),
		},
		{
			Name:  "serve",
			Usage: "serve run status and metrics over HTTP, POST /runs queues a backtest",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "listen",
					Usage:       "overrides server.listen-address",
					Destination: &listen,
				},
			},
			Action: serve,
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// setup reads the config and applies its logging settings
func setup() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.ReadConfigFromFile(configPath)
	} else {
		cfg, err = config.LoadFromEnvironment()
	}
	if err != nil {
		return nil, err
	}
	if err = log.SetupGlobalLogger(&cfg.Logging); err != nil {
		return nil, err
	}
	if err = common.RegisterBacktesterSubLoggers(); err != nil {
		return nil, err
	}
	cfg.PrintSetting()
	return cfg, nil
}

func newPipeline(ctx context.Context, cfg *config.Config) (*engine.Pipeline, error) {
	b, err := engine.LoadBundle(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return engine.NewPipeline(cfg, b)
}

func scan(ctx context.Context, cfg *config.Config) (any, error) {
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return p.Scan(ctx)
}

func backtest(ctx context.Context, cfg *config.Config) (any, error) {
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}
	report, err := p.Backtest(ctx)
	if err != nil {
		return nil, err
	}
	report.Statistics.PrintTotalResults()
	return report, nil
}

func optimise(ctx context.Context, cfg *config.Config) (any, error) {
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if perPair {
		report, err := p.OptimisePerPair(ctx)
		if err != nil {
			return nil, err
		}
		report.Portfolio.Statistics.PrintTotalResults()
		return report, nil
	}
	return p.Optimise(ctx)
}

// runTask runs one unit of work through the task manager and writes its
// result in the requested format
func runTask(kind string, fn func(context.Context, *config.Config) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		tasks := engine.NewTaskManager()
		id, err := tasks.AddTask(kind, cfg.Nickname, func(ctx context.Context) (any, error) {
			return fn(ctx, cfg)
		})
		if err != nil {
			return err
		}
		if err = tasks.StartTask(c.Context, id); err != nil {
			return err
		}
		sum, err := tasks.Wait(c.Context, id)
		if err != nil {
			return err
		}
		return writeOutput(sum.Result)
	}
}

func serve(c *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	addr := cfg.Server.ListenAddress
	if listen != "" {
		addr = listen
	}
	tasks := engine.NewTaskManager()
	launch := func() (uuid.UUID, error) {
		id, err := tasks.AddTask("backtest", cfg.Nickname, func(ctx context.Context) (any, error) {
			return backtest(ctx, cfg)
		})
		if err != nil {
			return uuid.Nil, err
		}
		// runs outlive the request that queued them
		return id, tasks.StartTask(context.WithoutCancel(c.Context), id)
	}
	s, err := engine.NewServer(addr, tasks, launch)
	if err != nil {
		return err
	}
	errs := make(chan error, 1)
	go func() {
		errs <- s.ListenAndServe()
	}()
	select {
	case err = <-errs:
		return err
	case <-c.Context.Done():
	}
	log.Infoln(common.Server, "Shutting down status server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return common.AppendError(s.Shutdown(ctx), <-errs)
}

func writeOutput(result any) (err error) {
	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, createErr := os.Create(filepath.Clean(outputPath))
		if createErr != nil {
			return createErr
		}
		defer func() {
			err = common.AppendError(err, f.Close())
		}()
		w = f
	}
	switch strings.ToLower(outputFormat) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", " ")
		return enc.Encode(result)
	case "yaml", "yml":
		// round trip through json so yaml keys follow the json tags
		j, err := json.Marshal(result)
		if err != nil {
			return err
		}
		var generic any
		if err = json.Unmarshal(j, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return common.AppendError(enc.Encode(generic), enc.Close())
	}
	return fmt.Errorf("%w: %q", errUnknownOutputFormat, outputFormat)
}
