// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	ReadTimeoutSec     int      `env:"READ_TIMEOUT_SEC" envDefault:"30"`
	WriteTimeoutSec    int      `env:"WRITE_TIMEOUT_SEC" envDefault:"30"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// FirebaseConfig holds the Firebase project and credentials settings.
// CredentialsFile may be empty, in which case the default application
// credential chain is used.
type FirebaseConfig struct {
	ProjectID       string `env:"FIREBASE_PROJECT_ID,required"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	StorageBucket   string `env:"FIREBASE_STORAGE_BUCKET"`
}

// RedisConfig holds the optional listing-cache settings; an empty Addr
// disables caching entirely.
type RedisConfig struct {
	Addr        string `env:"REDIS_ADDR"`
	Password    string `env:"REDIS_PASSWORD"`
	DB          int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLSec int    `env:"REDIS_CACHE_TTL_SEC" envDefault:"60"`
}

// Config is the full application configuration.
type Config struct {
	Debug    bool `env:"DEBUG" envDefault:"false"`
	Server   ServerConfig
	Firebase FirebaseConfig
	Redis    RedisConfig

	// UltimateAdminEmails are pinned to the ultimateAdmin role on every
	// profile load, overriding any stored value.
	UltimateAdminEmails []string `env:"ULTIMATE_ADMIN_EMAILS" envSeparator:"," envDefault:"adeldevs87@gmail.com,muhammedshad9895@gmail.com"`
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
