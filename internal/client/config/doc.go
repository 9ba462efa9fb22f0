// Package config loads runtime configuration for the sessionkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseConfigFile) selected via flags: -c or
//     -config. JSON by default, YAML when the name ends in .yaml or .yml.
//  3. Environment variables with the SK_ prefix (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-real-auth    use the real authentication backend
//	-debug        verbose logging
//	-u string     API base URL
//	-t int        request timeout (seconds)
//	-i int        online status check interval (seconds)
//	-d string     data directory
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds. Omitted keys keep their previous value. In JSON:
//
//	{
//	  "real_auth": false,
//	  "debug": true,
//	  "api_base_url": "http://127.0.0.1:8080/api",
//	  "request_timeout": "30s",
//	  "online_check_interval": "10s",
//	  "data_dir": "data"
//	}
//
// The same keys work in YAML:
//
//	api_base_url: http://127.0.0.1:8080/api
//	request_timeout: 30s
//
// # Environment
//
//	SK_REAL_AUTH, SK_DEBUG, SK_API_BASE_URL, SK_API_TIMEOUT, SK_DATA_DIR
//
// SK_API_TIMEOUT accepts a duration ("45s") or whole seconds ("45").
// Values that do not parse are ignored.
package config
