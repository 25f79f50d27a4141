package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName    string `mapstructure:"app_name"`
	Env        string `mapstructure:"app_env"`
	LogLevel   string `mapstructure:"log_level"`
	ConfigFile string `mapstructure:"config_file"`

	RestHost           string        `mapstructure:"rest_host"`
	RestFormat         string        `mapstructure:"rest_format"`
	RestTimeoutSeconds int64         `mapstructure:"rest_timeout_seconds"`
	RestTimeout        time.Duration `mapstructure:"-"`
	RestPlatformToken  string        `mapstructure:"rest_platform_token"`
	RestBearerToken    string        `mapstructure:"rest_bearer_token"`

	ResourcesFile string `mapstructure:"resources_file"`
	SinksFile     string `mapstructure:"sinks_file"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith is Load on a caller-provided viper instance, so flags bound to v
// take part in resolution.
func LoadWith(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v.SetDefault("app_name", "restsource")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("config_file", "")
	v.SetDefault("rest_host", "")
	v.SetDefault("rest_format", "json")
	v.SetDefault("rest_timeout_seconds", 15)
	v.SetDefault("rest_platform_token", "")
	v.SetDefault("rest_bearer_token", "")
	v.SetDefault("resources_file", "")
	v.SetDefault("sinks_file", "")
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((time.Hour)/time.Second))

	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.RestHost = strings.TrimSpace(cfg.RestHost)
	if cfg.RestHost == "" {
		return nil, fmt.Errorf("rest_host is required")
	}
	if cfg.RestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid rest_timeout_seconds (must be positive seconds)")
	}
	cfg.RestTimeout = time.Duration(cfg.RestTimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return &cfg, nil
}
