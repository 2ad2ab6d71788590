package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CaptureConfig controls the live capture source.
type CaptureConfig struct {
	// Interface to capture on. Empty means "use the LAN interface reported
	// by the mapping authority".
	Interface string `yaml:"interface"`
}

// MappingConfig controls the endpoint-to-egress mapping authority client.
type MappingConfig struct {
	AuthorityURL    string `yaml:"authority_url"`
	RefreshInterval string `yaml:"refresh_interval"`
}

// MetricsConfig controls the exposition surface and the publish cadence.
type MetricsConfig struct {
	ListenAddr      string `yaml:"listen_addr"`
	PublishInterval string `yaml:"publish_interval"`
}

// NATSConfig controls the optional per-window summary publisher. An empty
// URL disables it.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig controls log level and optional file rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Dir        string `yaml:"dir"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the top-level configuration struct for the agent.
type Config struct {
	LocalSubnets []string      `yaml:"local_subnets"`
	Capture      CaptureConfig `yaml:"capture"`
	Mapping      MappingConfig `yaml:"mapping"`
	Metrics      MetricsConfig `yaml:"metrics"`
	NATS         NATSConfig    `yaml:"nats"`
	Logging      LoggingConfig `yaml:"logging"`
}

// Default returns the compiled-in configuration the agent runs with when no
// config file is present.
func Default() *Config {
	return &Config{
		LocalSubnets: []string{
			"10.40.0.0/20",
		},
		Mapping: MappingConfig{
			AuthorityURL:    "http://localhost:32599/status",
			RefreshInterval: "10s",
		},
		Metrics: MetricsConfig{
			ListenAddr:      ":59122",
			PublishInterval: "1s",
		},
		NATS: NATSConfig{
			Subject: "lanmeter.windows",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the configuration from a YAML file, layered over the
// compiled-in defaults. A missing file is not an error; the defaults are
// returned unchanged.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return cfg, nil
}

// RefreshInterval parses the mapping refresh cadence.
func (c *Config) RefreshInterval() (time.Duration, error) {
	return positiveDuration(c.Mapping.RefreshInterval, "mapping.refresh_interval")
}

// PublishInterval parses the metrics publish cadence.
func (c *Config) PublishInterval() (time.Duration, error) {
	return positiveDuration(c.Metrics.PublishInterval, "metrics.publish_interval")
}

func positiveDuration(s, name string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", name)
	}
	return d, nil
}
