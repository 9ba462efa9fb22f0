package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		expect func(t *testing.T, c *Config)
	}{
		{
			name: "all set",
			env: map[string]string{
				envRealAuth: "true", envDebug: "1", envAPIBaseURL: " http://x/api ",
				envAPITimeout: "45", envDataDir: "/tmp/sk",
			},
			expect: func(t *testing.T, c *Config) {
				assert.True(t, c.RealAuth)
				assert.True(t, c.Debug)
				assert.Equal(t, "http://x/api", c.APIBaseURL)
				assert.Equal(t, 45*time.Second, c.RequestTimeout)
				assert.Equal(t, "/tmp/sk", c.DataDir)
			},
		},
		{
			name: "duration string",
			env:  map[string]string{envAPITimeout: "1m30s"},
			expect: func(t *testing.T, c *Config) {
				assert.Equal(t, 90*time.Second, c.RequestTimeout)
			},
		},
		{
			name: "garbage keeps current values",
			env:  map[string]string{envRealAuth: "maybe", envAPITimeout: "soon", envDataDir: "  "},
			expect: func(t *testing.T, c *Config) {
				assert.False(t, c.RealAuth)
				assert.Equal(t, 30*time.Second, c.RequestTimeout)
				assert.Equal(t, "data", c.DataDir)
			},
		},
		{
			name: "non-positive timeout ignored",
			env:  map[string]string{envAPITimeout: "0"},
			expect: func(t *testing.T, c *Config) {
				assert.Equal(t, 30*time.Second, c.RequestTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			c := &Config{}
			c.LoadDefaults()
			parseEnv(c)
			tt.expect(t, c)
		})
	}
}
