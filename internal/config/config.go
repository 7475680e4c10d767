// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wordle-score-bot/internal/schedule"
)

// Config holds all application configuration.
type Config struct {
	Slack    SlackConfig    `mapstructure:"slack"`
	Database DatabaseConfig `mapstructure:"database"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Players  PlayersConfig  `mapstructure:"players"`
}

// SlackConfig holds Slack API configuration.
type SlackConfig struct {
	Token      string `mapstructure:"token"`
	Channel    string `mapstructure:"channel"`
	PersonalID string `mapstructure:"personal_id"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// ScheduleConfig holds the firing times for the two recurring jobs.
type ScheduleConfig struct {
	DailyFetchHour   int    `mapstructure:"daily_fetch_hour"`
	WeeklyReportHour int    `mapstructure:"weekly_report_hour"`
	WeeklyReportDay  string `mapstructure:"weekly_report_day"`
}

// PlayersConfig holds the static player directory seed.
type PlayersConfig struct {
	SeedFile string `mapstructure:"seed_file"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// WeeklyReportWeekday parses the configured weekday name.
func (s *ScheduleConfig) WeeklyReportWeekday() (time.Weekday, error) {
	return schedule.ParseWeekday(s.WeeklyReportDay)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variable override
	// Environment variables use underscore separator and uppercase
	// e.g., SLACK_TOKEN, DATABASE_HOST, SCHEDULE_DAILY_FETCH_HOUR
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional - env vars can provide all config)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "wordlebot")
	v.SetDefault("database.name", "wordlebot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Schedule defaults: collect shortly after midnight, report Friday evening
	v.SetDefault("schedule.daily_fetch_hour", 6)
	v.SetDefault("schedule.weekly_report_hour", 17)
	v.SetDefault("schedule.weekly_report_day", "Friday")

	v.SetDefault("players.seed_file", "users.json")
}

// Validate checks that the configuration is complete and well-formed.
// Any violation here is a startup error, not something to catch at
// schedule time.
func (c *Config) Validate() error {
	if c.Slack.Token == "" {
		return fmt.Errorf("slack.token is required")
	}
	if c.Slack.Channel == "" {
		return fmt.Errorf("slack.channel is required")
	}
	if c.Schedule.DailyFetchHour < 0 || c.Schedule.DailyFetchHour > 23 {
		return fmt.Errorf("schedule.daily_fetch_hour must be 0-23, got %d", c.Schedule.DailyFetchHour)
	}
	if c.Schedule.WeeklyReportHour < 0 || c.Schedule.WeeklyReportHour > 23 {
		return fmt.Errorf("schedule.weekly_report_hour must be 0-23, got %d", c.Schedule.WeeklyReportHour)
	}
	if _, err := c.Schedule.WeeklyReportWeekday(); err != nil {
		return fmt.Errorf("schedule.weekly_report_day: %w", err)
	}
	return nil
}
