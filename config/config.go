package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config describes a classification run. Zero values are replaced by defaults.
type Config struct {
	Corpus     string    `yaml:"corpus"`
	Cache      string    `yaml:"cache"`
	Categories []string  `yaml:"categories"`
	Debug      bool      `yaml:"debug"`
	K          int       `yaml:"k"`
	Negative   bool      `yaml:"negative"`
	Folds      int       `yaml:"folds"`
	Points     []float64 `yaml:"points"`
	Seed       uint64    `yaml:"seed"`
	Parallel   int       `yaml:"parallel"`
	Output     string    `yaml:"output"`
	Addr       string    `yaml:"addr"`
}

// Default returns the configuration used when nothing else is given
func Default() Config {
	return Config{
		Categories: []string{"bio", "chem", "phys"},
		K:          5,
		Folds:      10,
		Points:     []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		Seed:       1,
		Addr:       ":8080",
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error
// when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid value
func (c Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, category := range c.Categories {
		if category == "" || seen[category] {
			return fmt.Errorf("%w: empty or duplicate category %q", ErrInvalidConfig, category)
		}
		seen[category] = true
	}
	if c.K < 0 {
		return fmt.Errorf("%w: k must not be negative, got %d", ErrInvalidConfig, c.K)
	}
	if c.Folds < 2 {
		return fmt.Errorf("%w: at least two folds are required, got %d", ErrInvalidConfig, c.Folds)
	}
	for _, p := range c.Points {
		if p <= 0 || p > 1 {
			return fmt.Errorf("%w: point %v is not in (0, 1]", ErrInvalidConfig, p)
		}
	}
	return nil
}
