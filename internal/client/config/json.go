package config

import (
	"encoding/json"
	"os"

	"rosterkeeper/internal/flagx"
	"rosterkeeper/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// may be written either as strings like "5s" or as integer nanoseconds.
type jsonConfig struct {
	ServerURL    string         `json:"server_url"`
	DatabasePath string         `json:"database_path"`
	PingInterval timex.Duration `json:"ping_interval"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
// No flag means no JSON overlay. Read or unmarshal errors panic, the
// binary must not start on a broken config file.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PingInterval.Duration > 0 {
		cfg.PingInterval = jc.PingInterval.Duration
	}
}
