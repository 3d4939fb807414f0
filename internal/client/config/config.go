// Package config handles configuration for the client binary:
// defaults, an optional JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the rosterkeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the backend REST API.
//   - DatabasePath: path of the local SQLite file.
//   - PingInterval: how often the client probes server reachability.
type Config struct {
	ServerURL    string
	DatabasePath string
	PingInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.DatabasePath = "rosterkeeper.db"
	c.PingInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
