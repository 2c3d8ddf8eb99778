package config

import "time"

// Config holds runtime settings for the Tripwit CLI.
//
// Fields:
//   - ServerURL: base URL of the sync authority.
//   - DataDir: directory holding the replica scope files (owned.db, shared.db).
//   - SyncInterval: how often the background syncer runs each scope.
//   - RequestTimeout: per-request HTTP timeout against the authority.
type Config struct {
	ServerURL      string
	DataDir        string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DataDir = "."
	c.SyncInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
