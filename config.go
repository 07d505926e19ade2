package qsim

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

/*
Config tunes the engine. The zero value is not useful; start from
DefaultConfig and override what you need, or load a YAML file with
LoadConfig.
*/
type Config struct {
	// Workers is the number of goroutines a gate's groups are spread over.
	Workers int `yaml:"workers"`

	// ParallelThreshold is the register size from which gate application
	// is split across workers. Smaller registers run on the caller.
	ParallelThreshold int `yaml:"parallel_threshold"`

	// DenseThreshold is the target count from which per-group products are
	// delegated to the backend.
	DenseThreshold int `yaml:"dense_threshold"`

	Tolerance float64 `yaml:"tolerance"`
	CheckNorm bool    `yaml:"check_norm"`
	MaxQubits int     `yaml:"max_qubits"`

	BreakerMaxFailures  int           `yaml:"breaker_max_failures"`
	BreakerResetTimeout time.Duration `yaml:"breaker_reset_timeout"`
	BreakerHalfOpenMax  int           `yaml:"breaker_half_open_max"`
}

// DefaultConfig uses one worker per available CPU.
func DefaultConfig() *Config {
	return &Config{
		Workers:             runtime.GOMAXPROCS(0),
		ParallelThreshold:   14,
		DenseThreshold:      3,
		Tolerance:           DefaultTolerance,
		CheckNorm:           true,
		MaxQubits:           26,
		BreakerMaxFailures:  3,
		BreakerResetTimeout: 30 * time.Second,
		BreakerHalfOpenMax:  1,
	}
}

/*
LoadConfig reads a YAML file over the defaults, so a file only needs to name
the settings it changes.
*/
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

/*
Validate rejects settings the engine cannot run with: fewer than one
worker, a non-positive tolerance, a dense threshold below one target, or a
qubit limit outside [1, 40].
*/
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}

	if c.MaxQubits < 1 || c.MaxQubits > 40 {
		return fmt.Errorf("max_qubits must be in [1, 40], got %d", c.MaxQubits)
	}

	if c.DenseThreshold < 1 {
		return fmt.Errorf("dense_threshold must be at least 1, got %d", c.DenseThreshold)
	}

	return nil
}
