// Package config provides configuration loading and management for sparams.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"sparams/pkg/extraction"
	"sparams/pkg/preprocess"
	"sparams/pkg/report"
	"sparams/pkg/spectral"
)

// Output formats for the result table
const (
	FormatCSV  = report.FormatCSV
	FormatYAML = report.FormatYAML
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Extraction parameters
	Extraction struct {
		// M is the angular resolution of the spectral analysis; the radial
		// profile uses M/2 samples
		M int `yaml:"m"`

		// UseFitted evaluates amplitude, hybrid and functional parameters on
		// the detrended surface instead of the raw heights
		UseFitted bool `yaml:"useFitted"`

		// Interpolator is the spectrum interpolation strategy (bilinear or nearest)
		Interpolator string `yaml:"interpolator"`

		// DetrendOrder is 1 for a plane or 2 for a quadratic trend surface
		DetrendOrder int `yaml:"detrendOrder"`

		// EnableDc5095 reports S_dc50-95 instead of its placeholder
		EnableDc5095 bool `yaml:"enableDc5095"`

		// FillMissing reconstructs unmeasured (NaN) samples by kriging
		FillMissing bool `yaml:"fillMissing"`
	} `yaml:"extraction"`

	// Processing parameters
	Processing struct {
		// NumWorkers specifies how many surfaces are processed in parallel
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Format of the result table (csv or yaml)
		Format string `yaml:"format"`

		// SaveIntermediary dumps the fitted surface, spectrum and ACF of
		// every surface as images
		SaveIntermediary bool `yaml:"saveIntermediary"`

		// IntermediaryDir is where the dumps are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Extraction.M = extraction.DefaultM
	cfg.Extraction.UseFitted = true
	cfg.Extraction.Interpolator = spectral.BilinearName
	cfg.Extraction.DetrendOrder = preprocess.Plane
	cfg.Extraction.EnableDc5095 = false
	cfg.Extraction.FillMissing = false

	cfg.Processing.NumWorkers = runtime.NumCPU() // Use all available cores by default

	cfg.Output.Format = FormatCSV
	cfg.Output.SaveIntermediary = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Keys missing from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that every value is usable by the extraction engine
func (c *Config) Validate() error {
	if c.Extraction.M < 2 || c.Extraction.M%2 != 0 {
		return fmt.Errorf("extraction.m must be even and at least 2, got %d", c.Extraction.M)
	}
	if _, err := spectral.FactoryByName(c.Extraction.Interpolator); err != nil {
		return fmt.Errorf("extraction.interpolator: %w", err)
	}
	if c.Extraction.DetrendOrder != preprocess.Plane && c.Extraction.DetrendOrder != preprocess.Quadratic {
		return fmt.Errorf("extraction.detrendOrder must be %d or %d, got %d",
			preprocess.Plane, preprocess.Quadratic, c.Extraction.DetrendOrder)
	}
	switch strings.ToLower(c.Output.Format) {
	case FormatCSV, FormatYAML:
	default:
		return fmt.Errorf("output.format must be %s or %s, got %q", FormatCSV, FormatYAML, c.Output.Format)
	}
	return nil
}

// ExtractionParams converts the configuration into orchestrator settings
func (c *Config) ExtractionParams() (*extraction.Params, error) {
	factory, err := spectral.FactoryByName(c.Extraction.Interpolator)
	if err != nil {
		return nil, err
	}
	return &extraction.Params{
		M:              c.Extraction.M,
		NumWorkers:     c.Processing.NumWorkers,
		DetrendOrder:   c.Extraction.DetrendOrder,
		Interpolator:   factory,
		UseRaw:         !c.Extraction.UseFitted,
		EnableAllBands: c.Extraction.EnableDc5095,
		FillMissing:    c.Extraction.FillMissing,
	}, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
