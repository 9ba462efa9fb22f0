package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
	"github.com/dmitrijs2005/sessionkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for config file unmarshalling.
// Pointer fields tell an omitted key apart from a zero value.
type FileConfig struct {
	RealAuth            *bool           `json:"real_auth" yaml:"real_auth"`
	Debug               *bool           `json:"debug" yaml:"debug"`
	APIBaseURL          *string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	DataDir             *string         `json:"data_dir" yaml:"data_dir"`
}

// parseConfigFile overlays Config with values loaded from the file named by
// -c or -config. Files ending in .yaml or .yml are read as YAML, anything
// else as JSON. Without either flag nothing is loaded.
//
// Panics on read or unmarshal errors (caller should recover if desired).
func parseConfigFile(cfg *Config) {
	configFile := flagx.JsonConfigFlags()
	if configFile == "" {
		return
	}

	var jc FileConfig

	data, err := os.ReadFile(configFile)
	if err != nil {
		panic(err)
	}

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jc)
	default:
		err = json.Unmarshal(data, &jc)
	}
	if err != nil {
		panic(err)
	}

	if jc.RealAuth != nil {
		cfg.RealAuth = *jc.RealAuth
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
}
