package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/corey/tally/internal/domain/engine"
)

// Environment variables read by LoadConfig.
const (
	EnvHome    = "TALLY_HOME"
	EnvWorkers = "TALLY_WORKERS"
	EnvPolicy  = "TALLY_POLICY"
)

// Config holds settings shared by every command. Flags override it field by field.
type Config struct {
	Home       string // directory holding .tally/ (default: working directory)
	Workers    int    // bulk-mode scan workers; 1 is sequential
	Policy     engine.Policy
	Duplicates engine.DuplicatePolicy
	Archive    bool // save reports to the run archive
}

// DefaultConfig returns the reference settings: sequential scans, sentinel
// failures, last-write-wins duplicates, no archive.
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// LoadConfig reads TALLY_* variables on top of DefaultConfig.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	cfg.Home = os.Getenv(EnvHome)
	if cfg.Home == "" {
		wd, err := os.Getwd()
		if err != nil {
			return cfg, fmt.Errorf("resolve home: %w", err)
		}
		cfg.Home = wd
	}

	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("%s: want a positive integer, got %q", EnvWorkers, v)
		}
		cfg.Workers = n
	}

	if v := os.Getenv(EnvPolicy); v != "" {
		p, err := engine.PolicyFromName(strings.ToLower(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvPolicy, err)
		}
		cfg.Policy = p
	}

	return cfg, nil
}

// Paths resolves the state directory for this configuration.
func (c Config) Paths() *Paths {
	return NewPaths(c.Home)
}
