// Package config loads the optional YAML configuration file. Absent
// fields (or an absent file) fall back to the built-in defaults; the
// file never carries secrets, only detector tuning and the log path.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/luki/metaldetect/internal/detector"
	"github.com/luki/metaldetect/internal/store"
)

// DefaultPath is where the config file is looked up when no -config
// flag is given.
const DefaultPath = "metaldetect.yaml"

// DefaultRecentLimit is how many detections the log browser shows.
const DefaultRecentLimit = 10

// Config is the full configuration. Fields map 1:1 to metaldetect.yaml.
type Config struct {
	// Threshold is the minimum reading classified as a detection.
	Threshold int `yaml:"threshold"`

	// Delay is the interval between monitoring cycles.
	Delay time.Duration `yaml:"delay"`

	// LogFile is the path of the append-only detection CSV.
	LogFile string `yaml:"log_file"`

	// RecentLimit is how many recent detections the viewer lists.
	RecentLimit int `yaml:"recent_limit"`
}

func defaults() *Config {
	return &Config{
		Threshold:   detector.DefaultThreshold,
		Delay:       detector.DefaultDelay,
		LogFile:     store.DefaultLogFile,
		RecentLimit: DefaultRecentLimit,
	}
}

// Load reads the config file at path. A missing file is not an error:
// the config is optional and defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults(), nil
		}
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Threshold < detector.MinThreshold || cfg.Threshold > detector.MaxThreshold {
		return fmt.Errorf("threshold %d out of range [%d, %d]",
			cfg.Threshold, detector.MinThreshold, detector.MaxThreshold)
	}
	if cfg.Delay <= 0 {
		return fmt.Errorf("delay must be positive, got %v", cfg.Delay)
	}
	if cfg.LogFile == "" {
		return fmt.Errorf("log_file must not be empty")
	}
	if cfg.RecentLimit <= 0 {
		return fmt.Errorf("recent_limit must be positive, got %d", cfg.RecentLimit)
	}
	return nil
}
