package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeoutSec           = 10
	DefaultReconnectDelaySec    = 2
	DefaultReconnectMaxDelaySec = 30
	DefaultStatsWindow          = 15 * time.Minute
)

// Config holds server connection and watch session settings.
type Config struct {
	Server *ServerConfig `yaml:"server,omitempty"`
	Watch  *WatchConfig  `yaml:"watch,omitempty"`
}

// ServerConfig describes how to reach the studio API.
type ServerConfig struct {
	URL         string   `yaml:"url"`
	APIToken    string   `yaml:"api_token,omitempty"`
	TimeoutSec  int      `yaml:"timeout_sec"`
	STUNServers []string `yaml:"stun_servers,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (s *ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// WatchConfig is used by the watch loop and the offline status view.
type WatchConfig struct {
	Lab                  string `yaml:"lab"`
	CachePath            string `yaml:"cache_path"`
	MetricsPath          string `yaml:"metrics_path,omitempty"`
	ReconnectDelaySec    int    `yaml:"reconnect_delay_sec"`
	ReconnectMaxDelaySec int    `yaml:"reconnect_max_delay_sec"`
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// Save writes a YAML config file to disk.
func Save(path string, cfg Config) error {
	ApplyDefaults(&cfg)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate performs minimal validation for required fields.
func Validate(cfg Config) error {
	if cfg.Server == nil {
		return fmt.Errorf("config must contain a server section")
	}
	if cfg.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	return nil
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.Server != nil {
		if cfg.Server.TimeoutSec == 0 {
			cfg.Server.TimeoutSec = DefaultTimeoutSec
		}
	}

	if cfg.Watch != nil {
		if cfg.Watch.ReconnectDelaySec == 0 {
			cfg.Watch.ReconnectDelaySec = DefaultReconnectDelaySec
		}
		if cfg.Watch.ReconnectMaxDelaySec == 0 {
			cfg.Watch.ReconnectMaxDelaySec = DefaultReconnectMaxDelaySec
		}
		if cfg.Watch.ReconnectMaxDelaySec < cfg.Watch.ReconnectDelaySec {
			cfg.Watch.ReconnectMaxDelaySec = cfg.Watch.ReconnectDelaySec
		}
	}
}
