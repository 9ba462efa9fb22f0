package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envRealAuth   = "SK_REAL_AUTH"
	envDebug      = "SK_DEBUG"
	envAPIBaseURL = "SK_API_BASE_URL"
	envAPITimeout = "SK_API_TIMEOUT"
	envDataDir    = "SK_DATA_DIR"
)

// parseEnv overlays Config with SK_* environment variables.
func parseEnv(cfg *Config) {
	cfg.RealAuth = envBool(envRealAuth, cfg.RealAuth)
	cfg.Debug = envBool(envDebug, cfg.Debug)
	cfg.APIBaseURL = envString(envAPIBaseURL, cfg.APIBaseURL)
	cfg.RequestTimeout = envDuration(envAPITimeout, cfg.RequestTimeout)
	cfg.DataDir = envString(envDataDir, cfg.DataDir)
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

// envDuration accepts "45s" style durations or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
