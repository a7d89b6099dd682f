package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/toptracker/internal/config"
	"github.com/toptracker/internal/ingestion"
	"github.com/toptracker/internal/maintenance"
	"github.com/toptracker/internal/reporting"
	"github.com/toptracker/internal/state"
)

func main() {
	configPath := flag.String("config", "config/default.toml", "path to TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "toptracker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Info("starting toptracker", "config", configPath)

	window := state.NewWindow(cfg.Tracker.Timeout(), cfg.Tracker.MaxActions)
	logger.Info("action window initialized",
		"ttl", window.TTL(),
		"capacity", window.Capacity(),
	)

	sweeper := maintenance.NewSweeper(window, cfg.Sweeper.Interval(), logger.With("component", "sweeper"))
	reporter := reporting.NewReporter(window, cfg.Reporter.Interval(), logger.With("component", "reporter"))

	var simulator *ingestion.Simulator
	if cfg.Simulator.Enabled {
		simulator, err = ingestion.NewSimulator(cfg.Simulator, window, logger.With("component", "simulator"))
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error { return reporter.Run(gctx) })
	if simulator != nil {
		g.Go(func() error { return simulator.Run(gctx) })
	}

	logger.Info("all components started")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}
