// Package config handles configuration loading for the hexgrid server.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Cache      CacheConfig      `yaml:"cache"`
	Render     RenderConfig     `yaml:"render"`
	Processing ProcessingConfig `yaml:"processing"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DataConfig contains data source settings.
type DataConfig struct {
	DatasetPath string `yaml:"dataset_path"`
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	RenderSizeMB     int `yaml:"render_size_mb"`
	RenderTTLMinutes int `yaml:"render_ttl_minutes"`
	SummaryEntries   int `yaml:"summary_entries"`
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	HexSize       float64 `yaml:"hex_size"`
	SpacingFactor float64 `yaml:"spacing_factor"`
	Palette       string  `yaml:"palette"`
	OutputDir     string  `yaml:"output_dir"`
	CompressSVG   bool    `yaml:"compress_svg"`
	Workers       int     `yaml:"workers"`
}

// ProcessingConfig contains pipeline defaults.
type ProcessingConfig struct {
	ThresholdMethod string `yaml:"threshold_method"`
	Buckets         int    `yaml:"buckets"`
	MergeStrategy   string `yaml:"merge_strategy"`
	StrictValidate  bool   `yaml:"strict_validate"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Data: DataConfig{
			DatasetPath: "./data/columns.json",
		},
		Cache: CacheConfig{
			RenderSizeMB:     256,
			RenderTTLMinutes: 10,
			SummaryEntries:   256,
		},
		Render: RenderConfig{
			HexSize:       10,
			SpacingFactor: 1.1,
			Palette:       "reds",
			OutputDir:     "./static/images",
			Workers:       4,
		},
		Processing: ProcessingConfig{
			ThresholdMethod: "equal",
			Buckets:         5,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Data.DatasetPath == "" {
		cfg.Data.DatasetPath = defaults.Data.DatasetPath
	}
	if cfg.Cache.RenderSizeMB == 0 {
		cfg.Cache.RenderSizeMB = defaults.Cache.RenderSizeMB
	}
	if cfg.Cache.RenderTTLMinutes == 0 {
		cfg.Cache.RenderTTLMinutes = defaults.Cache.RenderTTLMinutes
	}
	if cfg.Cache.SummaryEntries == 0 {
		cfg.Cache.SummaryEntries = defaults.Cache.SummaryEntries
	}
	if cfg.Render.HexSize == 0 {
		cfg.Render.HexSize = defaults.Render.HexSize
	}
	if cfg.Render.SpacingFactor == 0 {
		cfg.Render.SpacingFactor = defaults.Render.SpacingFactor
	}
	if cfg.Render.Palette == "" {
		cfg.Render.Palette = defaults.Render.Palette
	}
	if cfg.Render.OutputDir == "" {
		cfg.Render.OutputDir = defaults.Render.OutputDir
	}
	if cfg.Render.Workers == 0 {
		cfg.Render.Workers = defaults.Render.Workers
	}
	if cfg.Processing.ThresholdMethod == "" {
		cfg.Processing.ThresholdMethod = defaults.Processing.ThresholdMethod
	}
	if cfg.Processing.Buckets == 0 {
		cfg.Processing.Buckets = defaults.Processing.Buckets
	}
}
