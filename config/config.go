package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the runtime environment of the pricer. The model parameters
// themselves come from the command line.
type Config struct {
	Seed     uint64 // GBM_SEED, 0 seeds from the clock
	Workers  int    // GBM_WORKERS
	LogLevel string // GBM_LOG_LEVEL
	Progress bool   // GBM_PROGRESS
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Workers:  defaultWorkers(),
		LogLevel: "info",
	}

	if v := strings.TrimSpace(getenv("GBM_SEED")); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: GBM_SEED=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Seed = seed
	}

	if v := strings.TrimSpace(getenv("GBM_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: GBM_WORKERS must be a positive integer, got %q", ErrInvalidConfig, v)
		}
		cfg.Workers = n
	}

	if v := strings.TrimSpace(getenv("GBM_LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("%w: GBM_LOG_LEVEL=%q", ErrInvalidConfig, cfg.LogLevel)
	}

	if v := strings.TrimSpace(getenv("GBM_PROGRESS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: GBM_PROGRESS=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Progress = b
	}

	return cfg, nil
}

// defaultWorkers prefers the physical core count; path generation is pure
// floating point work and gains little from hyperthreads.
func defaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
