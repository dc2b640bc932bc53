// Package config loads the optional .strata.yaml sidecar. goccy/go-yaml is
// already present transitively through the teacher's go-snaps dependency;
// this package promotes it to a direct dependency rather than hand-rolling
// a flag-only config story.
package config

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds the small set of knobs a saturation run accepts.
type Config struct {
	// MaxStratumIterations bounds how many rounds a single stratum may
	// take before the driver reports IntegrityViolation instead of
	// looping forever over a non-monotone rule set. Zero means unbounded.
	MaxStratumIterations int `yaml:"maxStratumIterations"`
	// PrintBigIntAsHex is read from the sidecar, but nothing in the CLI
	// consults it: BigInt values always print in decimal.
	PrintBigIntAsHex bool `yaml:"printBigIntAsHex"`
}

// Default returns the configuration used when no .strata.yaml is present.
func Default() Config {
	return Config{MaxStratumIterations: 10000, PrintBigIntAsHex: false}
}

// Load reads and parses path, falling back to Default() for any field the
// file omits. A missing file is not an error — it simply yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
