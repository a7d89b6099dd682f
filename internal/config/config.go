package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/toptracker/internal/state"
)

const envPrefix = "TOPTRACKER__"

type Config struct {
	Tracker   TrackerConfig   `toml:"tracker" envPrefix:"TRACKER__"`
	Sweeper   SweeperConfig   `toml:"sweeper" envPrefix:"SWEEPER__"`
	Simulator SimulatorConfig `toml:"simulator" envPrefix:"SIMULATOR__"`
	Reporter  ReporterConfig  `toml:"reporter" envPrefix:"REPORTER__"`
	Log       LogConfig       `toml:"log" envPrefix:"LOG__"`
}

type TrackerConfig struct {
	TimeoutSecs int `toml:"timeout_secs" env:"TIMEOUT_SECS"`
	MaxActions  int `toml:"max_actions" env:"MAX_ACTIONS"`
}

type SweeperConfig struct {
	IntervalSecs int `toml:"interval_secs" env:"INTERVAL_SECS"`
}

type SimulatorConfig struct {
	Enabled         bool     `toml:"enabled" env:"ENABLED"`
	Workers         int      `toml:"workers" env:"WORKERS"`
	Players         uint64   `toml:"players" env:"PLAYERS"`
	EventsPerSecond float64  `toml:"events_per_second" env:"EVENTS_PER_SECOND"`
	Burst           int      `toml:"burst" env:"BURST"`
	Kinds           []string `toml:"kinds" env:"KINDS" envSeparator:","`
}

type ReporterConfig struct {
	IntervalSecs int `toml:"interval_secs" env:"INTERVAL_SECS"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			TimeoutSecs: 60,
			MaxActions:  10000,
		},
		Sweeper: SweeperConfig{
			IntervalSecs: 1,
		},
		Simulator: SimulatorConfig{
			Enabled:         true,
			Workers:         4,
			Players:         100,
			EventsPerSecond: 200,
			Burst:           20,
			Kinds:           []string{"BUY", "SELL", "WIN", "LOSE"},
		},
		Reporter: ReporterConfig{
			IntervalSecs: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// if it exists, then TOPTRACKER__* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Tracker.MaxActions < 1 {
		return fmt.Errorf("tracker.max_actions must be at least 1, got %d", c.Tracker.MaxActions)
	}
	if c.Tracker.TimeoutSecs < 0 {
		return fmt.Errorf("tracker.timeout_secs must not be negative, got %d", c.Tracker.TimeoutSecs)
	}
	if c.Sweeper.IntervalSecs < 1 {
		return fmt.Errorf("sweeper.interval_secs must be at least 1, got %d", c.Sweeper.IntervalSecs)
	}
	if c.Reporter.IntervalSecs < 1 {
		return fmt.Errorf("reporter.interval_secs must be at least 1, got %d", c.Reporter.IntervalSecs)
	}
	if c.Simulator.Enabled {
		if c.Simulator.Workers < 1 {
			return fmt.Errorf("simulator.workers must be at least 1, got %d", c.Simulator.Workers)
		}
		if c.Simulator.Players < 1 {
			return errors.New("simulator.players must be at least 1")
		}
		if c.Simulator.EventsPerSecond <= 0 {
			return fmt.Errorf("simulator.events_per_second must be positive, got %v", c.Simulator.EventsPerSecond)
		}
		if c.Simulator.Burst < 1 {
			return fmt.Errorf("simulator.burst must be at least 1, got %d", c.Simulator.Burst)
		}
		if _, err := c.Simulator.ActionKinds(); err != nil {
			return err
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (c TrackerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c SweeperConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

func (c ReporterConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

// ActionKinds parses Kinds. An empty list is rejected.
func (c SimulatorConfig) ActionKinds() ([]state.ActionKind, error) {
	if len(c.Kinds) == 0 {
		return nil, errors.New("simulator.kinds must not be empty")
	}
	kinds := make([]state.ActionKind, 0, len(c.Kinds))
	for _, name := range c.Kinds {
		kind, err := state.ParseActionKind(name)
		if err != nil {
			return nil, fmt.Errorf("simulator.kinds: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
