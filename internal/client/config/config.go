// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the imagetools client.
//
// Fields:
//   - DatabasePath: sqlite file holding local pairing state.
//   - RequestTimeout: bound on every backend call.
//   - ClientName / ClientVersion: audit metadata sent when pairing.
type Config struct {
	DatabasePath   string
	RequestTimeout time.Duration
	ClientName     string
	ClientVersion  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "imagetools.db"
	c.RequestTimeout = 10 * time.Second
	c.ClientName = "imagetools-cli"
	c.ClientVersion = "1.0"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
