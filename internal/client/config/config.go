package config

import "time"

// Config holds runtime settings for the sessionkeeper CLI.
//
// Fields:
//   - RealAuth: use the real authentication backend instead of the placeholder.
//   - Debug: verbose logging with source locations.
//   - APIBaseURL: base URL of the backend REST API.
//   - RequestTimeout: per-request deadline for API calls.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DataDir: directory holding the local session database.
type Config struct {
	RealAuth            bool
	Debug               bool
	APIBaseURL          string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	DataDir             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RealAuth = false
	c.Debug = false
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
	c.DataDir = "data"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if given), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseConfigFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
