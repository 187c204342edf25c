package utils

import (
	"encoding/json"
	"os"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
)

// Speed multiplier bounds applied to TickInterval
const (
	MinSpeed = 0.5
	MaxSpeed = 10.0
)

// Config holds the configuration for the game
type Config struct {
	Rows           int           `json:"rows"`
	Columns        int           `json:"columns"`
	TickInterval   time.Duration `json:"tick_interval"`
	Speed          float64       `json:"speed"`
	Workers        int           `json:"workers"`
	UseParallel    bool          `json:"use_parallel"`
	UseBoundedGrid bool          `json:"use_bounded_grid"`
	Pattern        string        `json:"pattern"`
	RandomDensity  float64       `json:"random_density"`
	Seed           int64         `json:"seed"`
	MaxGenerations int           `json:"max_generations"`
	Headless       bool          `json:"headless"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:           60,
		Columns:        30,
		TickInterval:   time.Second,
		Speed:          1.0,
		Workers:        0, // runtime.NumCPU()
		UseParallel:    true,
		UseBoundedGrid: true,
		Pattern:        model.PatternEmpty,
		RandomDensity:  0.15,
		Seed:           0,
		MaxGenerations: 100,
		Headless:       false,
	}
}

// Dimensions returns the configured grid size
func (c Config) Dimensions() model.Dimensions {
	return model.Dimensions{Rows: c.Rows, Columns: c.Columns}
}

// Validate checks the configuration for values the game cannot run with
func (c Config) Validate() error {
	switch {
	case c.Rows < 0 || c.Columns < 0:
		return errors.Errorf("[Validate] negative dimensions: %dx%d", c.Rows, c.Columns)
	case c.TickInterval <= 0:
		return errors.Errorf("[Validate] tick interval must be positive: %v", c.TickInterval)
	case c.Speed < MinSpeed || c.Speed > MaxSpeed:
		return errors.Errorf("[Validate] speed %v outside [%v, %v]", c.Speed, MinSpeed, MaxSpeed)
	case c.RandomDensity < 0 || c.RandomDensity > 1:
		return errors.Errorf("[Validate] random density %v outside [0, 1]", c.RandomDensity)
	case !slices.Contains(model.Patterns, c.Pattern):
		return errors.Errorf("[Validate] unknown pattern: %+v", c.Pattern)
	case c.MaxGenerations < 0:
		return errors.Errorf("[Validate] max generations must not be negative: %d", c.MaxGenerations)
	}
	return nil
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid configuration in file: %+v", filename)
	}

	return config, nil
}
