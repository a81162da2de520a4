package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

// setupEnv sets environment variables for the duration of the test.
// An empty value unsets the variable.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
		if value == "" {
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

// TestLoadDefaults verifies the defaults applied when only required values are set.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		"SPLITMONEY_AUTH_JWT_SECRET":      testSecret,
		"SPLITMONEY_SERVER_PORT":          "",
		"SPLITMONEY_SERVER_LOG_LEVEL":     "",
		"SPLITMONEY_LEDGER_TOLERANCE":     "",
		"SPLITMONEY_INVITATIONS_TTL":      "",
		ConfigFileEnv:                     "",
		"SPLITMONEY_DATABASE_PATH":        "",
		"SPLITMONEY_AUTH_TOKEN_TTL":       "",
		"SPLITMONEY_INVITATIONS_BASE_URL": "",
	})

	cfg, err := Load()
	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "./data/splitmoney.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, decimal.RequireFromString("0.01").Equal(cfg.Ledger.Tolerance), "tolerance = %s", cfg.Ledger.Tolerance)
	assert.Equal(t, 24*time.Hour, cfg.Invitations.TTL)
	assert.Equal(t, "@hourly", cfg.Invitations.CleanupSchedule)
}

// TestLoadFromEnv verifies that environment variables override defaults.
func TestLoadFromEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		"SPLITMONEY_SERVER_PORT":            "9090",
		"SPLITMONEY_SERVER_LOG_LEVEL":       "debug",
		"SPLITMONEY_SERVER_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"SPLITMONEY_DATABASE_PATH":          "/tmp/ledger.db",
		"SPLITMONEY_AUTH_JWT_SECRET":        testSecret,
		"SPLITMONEY_AUTH_TOKEN_TTL":         "2h",
		"SPLITMONEY_LEDGER_TOLERANCE":       "0.005",
		"SPLITMONEY_INVITATIONS_TTL":        "72h",
		ConfigFileEnv:                       "",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, decimal.RequireFromString("0.005").Equal(cfg.Ledger.Tolerance))
	assert.Equal(t, 72*time.Hour, cfg.Invitations.TTL)
}

// TestLoadFromFile verifies that a YAML file is read and env still wins.
func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitmoney.yaml")
	content := `
server:
  port: 7070
  log_level: warn
database:
  path: /var/lib/splitmoney/file.db
auth:
  jwt_secret: "` + testSecret + `"
ledger:
  tolerance: "0"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	setupEnv(t, map[string]string{
		ConfigFileEnv:                 path,
		"SPLITMONEY_SERVER_PORT":      "7171",
		"SPLITMONEY_AUTH_JWT_SECRET":  "",
		"SPLITMONEY_DATABASE_PATH":    "",
		"SPLITMONEY_SERVER_LOG_LEVEL": "",
		"SPLITMONEY_LEDGER_TOLERANCE": "",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Server.Port, "env should override the file")
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/splitmoney/file.db", cfg.Database.Path)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.True(t, cfg.Ledger.Tolerance.IsZero())
}

// TestLoadValidationErrors verifies that invalid values are rejected.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "missing JWT secret",
			envVars: map[string]string{
				"SPLITMONEY_AUTH_JWT_SECRET": "",
			},
		},
		{
			name: "short JWT secret",
			envVars: map[string]string{
				"SPLITMONEY_AUTH_JWT_SECRET": "too-short",
			},
		},
		{
			name: "port out of range",
			envVars: map[string]string{
				"SPLITMONEY_AUTH_JWT_SECRET": testSecret,
				"SPLITMONEY_SERVER_PORT":     "999999",
			},
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"SPLITMONEY_AUTH_JWT_SECRET":  testSecret,
				"SPLITMONEY_SERVER_LOG_LEVEL": "verbose",
			},
		},
		{
			name: "negative tolerance",
			envVars: map[string]string{
				"SPLITMONEY_AUTH_JWT_SECRET":  testSecret,
				"SPLITMONEY_LEDGER_TOLERANCE": "-0.01",
			},
		},
		{
			name: "invalid base URL",
			envVars: map[string]string{
				"SPLITMONEY_AUTH_JWT_SECRET":      testSecret,
				"SPLITMONEY_INVITATIONS_BASE_URL": "not a url",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.envVars[ConfigFileEnv] = ""
			setupEnv(t, tc.envVars)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}
