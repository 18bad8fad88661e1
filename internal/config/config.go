package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port        string
	ProjectRoot string

	Database struct {
		Driver string // "sqlite3" or "libsql"
		Path   string
		URL    string
		Token  string
	}

	Auth struct {
		JWTSecret     string
		SessionCookie string
	}

	SessionCleanupInterval time.Duration
}

// Load reads config.yaml (optional), defaults and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	root := findProjectRoot()
	setDefaults(v, root)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := fromViper(v)
	cfg.ProjectRoot = root

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}
	cfg.Port = v.GetString("server.port")

	cfg.Database.Driver = strings.ToLower(v.GetString("database.driver"))
	cfg.Database.Path = v.GetString("database.path")
	cfg.Database.URL = v.GetString("database.url")
	cfg.Database.Token = v.GetString("database.token")

	cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	cfg.Auth.SessionCookie = v.GetString("auth.session_cookie")

	cfg.SessionCleanupInterval = v.GetDuration("session.cleanup_interval")
	return cfg
}

func setDefaults(v *viper.Viper, root string) {
	v.SetDefault("server.port", "8080")

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", filepath.Join(root, "forum.db"))

	v.SetDefault("auth.session_cookie", "session_id")
	v.SetDefault("session.cleanup_interval", time.Hour)
}

// bindEnv keeps the plain variable names (PORT, DB_PATH, ...) working.
func bindEnv(v *viper.Viper) {
	envs := map[string]string{
		"server.port":              "PORT",
		"database.driver":          "DB_DRIVER",
		"database.path":            "DB_PATH",
		"database.url":             "DB_URL",
		"database.token":           "DB_TOKEN",
		"auth.jwt_secret":          "AUTH_JWT_SECRET",
		"auth.session_cookie":      "AUTH_SESSION_COOKIE",
		"session.cleanup_interval": "SESSION_CLEANUP_INTERVAL",
	}
	for key, env := range envs {
		_ = v.BindEnv(key, env)
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite3":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite3")
		}
	case "libsql":
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is required for libsql")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	if cfg.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if cfg.SessionCleanupInterval <= 0 {
		return fmt.Errorf("session.cleanup_interval must be positive")
	}
	return nil
}

// findProjectRoot walks up from the working directory until it finds go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
