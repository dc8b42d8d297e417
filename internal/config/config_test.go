package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:            "development",
		APIBaseURL:     "http://localhost:3001",
		StoreBackend:   StoreBackendFile,
		StorePath:      "data/pingme.json",
		StoreNamespace: "pingme",
		DBDriver:       "sqlite",
		JWTSecret:      "secure-secret-at-least-32-chars-long",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid file backend", func(_ *Config) {}, false},
		{"redis backend", func(c *Config) { c.StoreBackend = StoreBackendRedis; c.RedisURL = "redis://localhost:6379" }, false},
		{"redis backend without url", func(c *Config) { c.StoreBackend = StoreBackendRedis; c.RedisURL = "" }, true},
		{"unknown backend", func(c *Config) { c.StoreBackend = "s3" }, true},
		{"file backend without path", func(c *Config) { c.StorePath = "" }, true},
		{"missing base url", func(c *Config) { c.APIBaseURL = "" }, true},
		{"unknown db driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"production with short secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, true},
		{"production with strong secret", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("STORE_BACKEND")
	defer os.Unsetenv("API_BASE_URL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")
	os.Setenv("STORE_BACKEND", "  FILE  ")
	os.Setenv("API_BASE_URL", "http://api.example.test/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreBackendFile, c.StoreBackend)
	assert.Equal(t, "http://api.example.test", c.APIBaseURL)
	assert.Equal(t, "pingme", c.StoreNamespace)
	assert.Equal(t, "3001", c.Port)
}
