// Package config loads server configuration from defaults, an optional YAML
// file, a .env file and SPLITMONEY_* environment variables, in increasing
// order of precedence.
package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth" validate:"required"`
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Invitations InvitationsConfig `mapstructure:"invitations" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig contains session token settings.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"required,gt=0"`
}

// LedgerConfig tunes balance computation.
type LedgerConfig struct {
	// Tolerance is the largest absolute balance treated as settled.
	Tolerance decimal.Decimal `mapstructure:"tolerance"`
}

// InvitationsConfig controls group invitations and their cleanup.
type InvitationsConfig struct {
	TTL             time.Duration `mapstructure:"ttl" validate:"required,gt=0"`
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule" validate:"required"`
}
