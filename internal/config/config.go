package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`

	SourceTimeoutSeconds int64         `mapstructure:"source_timeout_seconds"`
	SourceTimeout        time.Duration `mapstructure:"-"`
	HistoryLimit         int           `mapstructure:"history_limit"`

	CronEnabled  bool   `mapstructure:"cron_enabled"`
	CronSchedule string `mapstructure:"cron_schedule"`
	CronTimezone string `mapstructure:"cron_timezone"`

	HTTPPort int `mapstructure:"http_port"`

	YouTubeAPIKey string `mapstructure:"youtube_api_key"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "orbitwire-aggregator")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/content.db")
	v.SetDefault("source_timeout_seconds", 30)
	v.SetDefault("history_limit", 20)
	v.SetDefault("cron_enabled", false)
	v.SetDefault("cron_schedule", "0 6 * * *")
	v.SetDefault("cron_timezone", "UTC")
	v.SetDefault("http_port", 8080)
	v.SetDefault("youtube_api_key", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.SourceTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid source_timeout_seconds (must be positive seconds)")
	}
	cfg.SourceTimeout = time.Duration(cfg.SourceTimeoutSeconds) * time.Second

	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("invalid history_limit (must be positive)")
	}
	if cfg.CronEnabled {
		if cfg.CronSchedule == "" {
			return nil, fmt.Errorf("cron_schedule is required when cron_enabled is set")
		}
		if _, err := time.LoadLocation(cfg.CronTimezone); err != nil {
			return nil, fmt.Errorf("invalid cron_timezone %q: %w", cfg.CronTimezone, err)
		}
	}

	return &cfg, nil
}
