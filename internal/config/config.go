package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings shared by the server, the desktop UI and the CLI.
type Config struct {
	Env  string `mapstructure:"app_env"`
	Port string `mapstructure:"port"`

	// DBDriver selects the task repository: postgres, mongo, sqlite3, mysql
	// or memory.
	DBDriver      string `mapstructure:"db_driver"`
	DatabaseURL   string `mapstructure:"database_url"`
	MongoURI      string `mapstructure:"mongodb_uri"`
	MongoDatabase string `mapstructure:"mongodb_database"`
	NATSURL       string `mapstructure:"nats_url"`
	NATSSubject   string `mapstructure:"nats_subject"`
	APIBaseURL    string `mapstructure:"api_base_url"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	AppName       string `mapstructure:"app_name"`
	AppVersion    string `mapstructure:"app_version"`
}

var defaults = map[string]any{
	"app_env":          "production",
	"port":             "5001",
	"db_driver":        "mongo",
	"database_url":     "",
	"mongodb_uri":      "mongodb://localhost:27017/taskmanager",
	"mongodb_database": "taskmanager",
	"nats_url":         "",
	"nats_subject":     "taskdesk.tasks",
	"api_base_url":     "http://localhost:5001/api",
	"log_level":        "info",
	"log_format":       "text",
	"app_name":         "Task Manager",
	"app_version":      "1.0.0",
}

// Load reads defaults, then an optional YAML file, then the environment.
// The file is TASKDESK_CONFIG if set, else ./taskdesk.yaml when present.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	path := os.Getenv("TASKDESK_CONFIG")
	if path == "" {
		if _, err := os.Stat("taskdesk.yaml"); err == nil {
			path = "taskdesk.yaml"
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// Plain names (PORT, DATABASE_URL, ...) so the usual deployment
	// variables work without a prefix.
	v.AutomaticEnv()
	for k := range defaults {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at connect time.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for db_driver=postgres")
		}
	case "sqlite3", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for db_driver=%s", c.DBDriver)
		}
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required for db_driver=mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown db_driver %q", c.DBDriver)
	}
	return nil
}

// IsDev reports whether the process runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if c.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}
