package config

import (
	"flag"
	"os"
	"time"

	"rosterkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend server
//	-d string   path of the local SQLite database
//	-i int      ping interval in seconds
//
// Args are filtered to only the flags handled here so cobra's own
// parsing is not disturbed.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local SQLite database")
	pingInterval := fs.Int("i", int(cfg.PingInterval.Seconds()), "ping interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PingInterval = time.Duration(*pingInterval) * time.Second
}
