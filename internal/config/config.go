// Package config provides configuration loading and validation for the
// rollcall bot. Values come from defaults, an optional YAML file, and BOT_*
// environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds transport settings. BotInfo is populated at startup
// from GetMe and is not read from the config file.
type TelegramConfig struct {
	Token   string       `mapstructure:"token" validate:"required"`
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AttendanceConfig holds the activity state machine thresholds and the report
// page size. Defaults match the deployed behavior; changing them is possible
// but not expected.
type AttendanceConfig struct {
	InactiveThreshold time.Duration `mapstructure:"inactive_threshold" validate:"min=1m"`
	InactivePeriod    time.Duration `mapstructure:"inactive_period"    validate:"min=1m"`
	ReducedPerMessage time.Duration `mapstructure:"reduced_per_message" validate:"min=1s"`
	MessagesToClear   int           `mapstructure:"messages_to_clear"  validate:"min=1"`
	PageSize          int           `mapstructure:"page_size"          validate:"min=1,max=50"`
}

// TaskConfig enables one scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig holds user-facing message templates.
type MessagesConfig struct {
	Welcome        string `mapstructure:"welcome"         validate:"required"`
	Help           string `mapstructure:"help"            validate:"required"`
	GroupOnly      string `mapstructure:"group_only"      validate:"required"`
	GeneralError   string `mapstructure:"general_error"   validate:"required"`
	InvalidRequest string `mapstructure:"invalid_request" validate:"required"`
}

// LoadConfig reads configuration from the given YAML file (which may be
// absent), applies BOT_* environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	// Registered with an empty default so BOT_TELEGRAM_TOKEN is visible to
	// Unmarshal even without a config file; validation still requires a value.
	v.SetDefault("telegram.token", "")

	v.SetDefault("database.path", "./storage.db")

	v.SetDefault("attendance.inactive_threshold", 24*time.Hour)
	v.SetDefault("attendance.inactive_period", 24*time.Hour)
	v.SetDefault("attendance.reduced_per_message", time.Minute)
	v.SetDefault("attendance.messages_to_clear", 15)
	v.SetDefault("attendance.page_size", 10)

	v.SetDefault("scheduler.tasks", map[string]any{
		"inactivity_sweep": map[string]any{
			"enabled":  true,
			"schedule": "*/10 * * * *",
		},
		"sql_maintenance": map[string]any{
			"enabled":  true,
			"schedule": "0 4 * * *",
		},
	})

	v.SetDefault("messages.welcome",
		"Attendance bot is running. Add me to a group and I will track activity. Use /attendance in group to see statuses.")
	v.SetDefault("messages.help",
		"Use /attendance inside a group chat to see who is active. Buttons below the report switch page, filter, and ordering.")
	v.SetDefault("messages.group_only", "Please use /attendance inside the group chat.")
	v.SetDefault("messages.general_error", "Something went wrong. Please try again later.")
	v.SetDefault("messages.invalid_request", "Invalid request.")
}
