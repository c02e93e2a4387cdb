package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultDBPath   = "./dev.db"
	defaultPort     = "8080"
	defaultEnv      = "development"
	defaultLogLevel = "info"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env             string `mapstructure:"APP_ENV"`
	AdminEmail      string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword   string `mapstructure:"ADMIN_PASSWORD"`
	SessionSecret   string `mapstructure:"SESSION_SECRET"`
	DBPath          string `mapstructure:"DB_PATH"`
	Port            string `mapstructure:"PORT"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	AMQPURL         string `mapstructure:"AMQP_URL"`
	StrictFilaments bool   `mapstructure:"STRICT_FILAMENTS"`
}

var envKeys = []string{
	"APP_ENV",
	"ADMIN_EMAIL",
	"ADMIN_PASSWORD",
	"SESSION_SECRET",
	"DB_PATH",
	"PORT",
	"LOG_LEVEL",
	"AMQP_URL",
	"STRICT_FILAMENTS",
}

// Load reads a local .env file (if any) and then the process environment.
// Variables already set in the environment take precedence over the file.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		// Missing file is fine: production injects real environment variables.
		_ = godotenv.Load(dotenvPath)
	}

	v := viper.New()
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("DB_PATH", defaultDBPath)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("STRICT_FILAMENTS", false)
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == defaultEnv || c.Env == "local"
}

// Warnings lists configuration gaps worth logging at startup.
func (c Config) Warnings() []string {
	var warnings []string
	if c.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set")
	}
	return warnings
}
