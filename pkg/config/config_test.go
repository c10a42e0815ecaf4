package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearDatabaseEnv blanks the env vars Load consults so tests see pure
// defaults regardless of the host environment. t.Setenv restores the
// previous values on cleanup.
func clearDatabaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE",
		"SERVER_HOST", "SERVER_PORT", "MEMENTO_LOG_LEVEL", "TELEMETRY_PARQUET_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	clearDatabaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://localhost:7687", cfg.Database.URI)
	assert.Equal(t, "neo4j", cfg.Database.Username)
	assert.Equal(t, "password", cfg.Database.Password)
	assert.Equal(t, "neo4j", cfg.Database.Database)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.CircuitBreaker.Enabled)
	assert.Empty(t, cfg.Telemetry.ParquetPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	clearDatabaseEnv(t)

	t.Setenv("NEO4J_URI", "bolt://graph.internal:7687")
	t.Setenv("NEO4J_USERNAME", "svc-memento")
	t.Setenv("NEO4J_PASSWORD", "s3cret")
	t.Setenv("NEO4J_DATABASE", "memory")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://graph.internal:7687", cfg.Database.URI)
	assert.Equal(t, "svc-memento", cfg.Database.Username)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "memory", cfg.Database.Database)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadUsernameFallback(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	clearDatabaseEnv(t)

	t.Run("NEO4J_USER accepted", func(t *testing.T) {
		t.Setenv("NEO4J_USER", "fallback-user")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "fallback-user", cfg.Database.Username)
	})

	t.Run("NEO4J_USERNAME wins", func(t *testing.T) {
		t.Setenv("NEO4J_USER", "fallback-user")
		t.Setenv("NEO4J_USERNAME", "primary-user")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "primary-user", cfg.Database.Username)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing database uri",
			mutate:  func(c *Config) { c.Database.URI = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
