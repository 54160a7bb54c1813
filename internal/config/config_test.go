package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		Port:                     "8080",
		DBSSLMode:                "require",
		DBConnMaxLifetimeMinutes: 1,
		RedisURL:                 "redis://localhost:6379",
		TracingSampleRatio:       1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"default jwt secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }},
		{"default db password", func(c *Config) { c.DBPassword = "password" }},
		{"empty db password", func(c *Config) { c.DBPassword = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = "production"
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	c := validConfig()
	c.Port = ""
	assert.EqualError(t, c.Validate(), "PORT is required")

	c = validConfig()
	c.JWTSecret = ""
	assert.EqualError(t, c.Validate(), "JWT_SECRET is required")

	c = validConfig()
	c.TracingSampleRatio = 1.5
	assert.Error(t, c.Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("PORT", "9191")
	t.Setenv("DB_SCHEMA_MODE", " SQL ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "9191", c.Port)
	assert.Equal(t, "sql", c.DBSchemaMode)
	assert.Equal(t, 24*7, c.JWTTTLHours)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	defer viper.Reset()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DEV_SEED_DEMO=true\nPORT=7070\n"), 0o600))
	t.Chdir(dir)

	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9292")
	t.Cleanup(func() { _ = os.Unsetenv("DEV_SEED_DEMO") })

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, c.DevSeedDemo)
	assert.Equal(t, "9292", c.Port)
}
