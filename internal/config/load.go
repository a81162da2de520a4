package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SPLITMONEY_SERVER_PORT.
const EnvPrefix = "SPLITMONEY"

// ConfigFileEnv names the variable holding an explicit config file path.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

var defaults = map[string]any{
	"server.port":                  8080,
	"server.log_level":             "info",
	"server.allowed_origins":       []string{"*"},
	"database.path":                "./data/splitmoney.db",
	"auth.token_ttl":               "24h",
	"ledger.tolerance":             "0.01",
	"invitations.ttl":              "24h",
	"invitations.base_url":         "http://localhost:8080",
	"invitations.cleanup_schedule": "@hourly",
}

// keys without a default still need an env binding to be unmarshalled.
var envOnly = []string{"auth.jwt_secret"}

// Load builds a Config from defaults, the config file, .env and the
// environment, then validates it.
func Load() (*Config, error) {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readConfigFile merges the file named by SPLITMONEY_CONFIG, or ./config.yaml
// when present.
func readConfigFile(v *viper.Viper) error {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	slog.Debug("Config file loaded", "path", v.ConfigFileUsed())
	return nil
}

// Validate checks struct tags and the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Ledger.Tolerance.IsNegative() {
		return fmt.Errorf("config validation failed: ledger.tolerance must not be negative")
	}
	return nil
}
