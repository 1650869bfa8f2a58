// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when neither the config file nor a CLI flag sets a value.
const (
	DefaultWorkers          = 4
	DefaultRequestSpacingMS = 500
	DefaultMaxAttempts      = 3
	DefaultSaveInterval     = 10
	DefaultOutputDir        = "output"
	DefaultProgressFile     = "analysis_progress.json"
)

// Config represents the analyzer configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must
// be provided via CLI flags.
type Config struct {
	// Paths
	Input        string `json:"input,omitempty" validate:"omitempty,min=1"`  // Path to the reviews CSV
	OutputDir    string `json:"output_dir,omitempty"`                        // Directory for report artifacts
	ProgressFile string `json:"progress_file,omitempty"`                     // Path to the durable progress file

	// Provider
	APIKey string `json:"api_key,omitempty"` // Gemini API key (env var preferred)
	Model  string `json:"model,omitempty"`   // Gemini model name

	// Throughput
	Workers          int `json:"workers,omitempty" validate:"omitempty,min=1,max=64"`        // Concurrent classification workers
	MaxInFlight      int `json:"max_in_flight,omitempty" validate:"omitempty,min=1,max=64"`  // Concurrent provider calls; defaults to workers
	RequestSpacingMS int `json:"request_spacing_ms,omitempty" validate:"omitempty,min=0"`    // Minimum milliseconds between provider calls
	MaxAttempts      int `json:"max_attempts,omitempty" validate:"omitempty,min=1,max=10"`   // Attempts per record including the first
	SaveInterval     int `json:"save_interval,omitempty" validate:"omitempty,min=0"`         // Auto-persist every N completions; 0 disables

	// Sampling
	SampleSize int   `json:"sample_size,omitempty" validate:"omitempty,min=0"` // Classify a random subset of this size; 0 means all
	SampleSeed int64 `json:"sample_seed,omitempty"`                            // Seed for deterministic sampling

	// Behavior
	Resume  string `json:"resume,omitempty" validate:"omitempty,oneof=continue report restart"` // Resume policy; empty prompts interactively
	Verbose bool   `json:"verbose,omitempty"`                                                   // Print detailed debug information
}

var validate = validator.New()

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: required fields are not checked here; those are enforced by CLI
// flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: field %q failed %q validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Input != "" {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			return fmt.Errorf("config error: input file not found: %s", c.Input)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Input == "" {
		result.Input = defaults.Input
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.ProgressFile == "" {
		result.ProgressFile = defaults.ProgressFile
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}

	// Int fields: use default if zero
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.MaxInFlight == 0 {
		result.MaxInFlight = defaults.MaxInFlight
	}
	if result.RequestSpacingMS == 0 {
		result.RequestSpacingMS = defaults.RequestSpacingMS
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.SaveInterval == 0 {
		result.SaveInterval = defaults.SaveInterval
	}
	if result.SampleSize == 0 {
		result.SampleSize = defaults.SampleSize
	}
	if result.SampleSeed == 0 {
		result.SampleSeed = defaults.SampleSeed
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Baseline returns the built-in defaults applied after any config file.
func Baseline() Config {
	return Config{
		OutputDir:        DefaultOutputDir,
		ProgressFile:     DefaultProgressFile,
		Workers:          DefaultWorkers,
		RequestSpacingMS: DefaultRequestSpacingMS,
		MaxAttempts:      DefaultMaxAttempts,
		SaveInterval:     DefaultSaveInterval,
	}
}
