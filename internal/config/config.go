// Package config provides configuration loading, validation, and management
// for the contest reminder bot. Values come from built-in defaults, an optional
// YAML file and BOT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// ErrConfiguration marks every error returned by Load.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration parameters for all components.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Warnings  WarningsConfig  `mapstructure:"warnings"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level, format and the optional append-only log file.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// TelegramConfig holds the bot credential and the delivery targets.
type TelegramConfig struct {
	Token           string  `mapstructure:"token"             validate:"required"`
	ChannelID       string  `mapstructure:"channel_id"        validate:"required"`
	BackupChannelID string  `mapstructure:"backup_channel_id"`
	AdminUserID     int64   `mapstructure:"admin_id"          validate:"gte=0"`
	CommandPrefix   string  `mapstructure:"command_prefix"    validate:"required"`
	SendRate        float64 `mapstructure:"send_rate"         validate:"gt=0"`
	SendBurst       int     `mapstructure:"send_burst"        validate:"gte=1"`
	AckReaction     string  `mapstructure:"ack_reaction"`

	// BotInfo is filled at startup from getMe and never read from configuration.
	BotInfo *models.User `mapstructure:"-"`
}

// SourcesConfig points the contest adapters at their upstream APIs.
type SourcesConfig struct {
	LeetCodeURL         string        `mapstructure:"leetcode_url"          validate:"required,url"`
	LeetCodeContestBase string        `mapstructure:"leetcode_contest_base" validate:"required,url"`
	CodeChefURL         string        `mapstructure:"codechef_url"          validate:"required,url"`
	CodeChefContestBase string        `mapstructure:"codechef_contest_base" validate:"required,url"`
	Timeout             time.Duration `mapstructure:"timeout"               validate:"min=1s,max=2m"`
}

// RetryConfig parameterises the fetch retry wrapper.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=0,max=10"`
	Delay       time.Duration `mapstructure:"delay"        validate:"min=0s,max=5m"`
}

// WarningsConfig defines the "starting soon" lookahead window.
type WarningsConfig struct {
	Lookahead  time.Duration `mapstructure:"lookahead"   validate:"min=1m,gtfield=WarnBefore"`
	WarnBefore time.Duration `mapstructure:"warn_before" validate:"min=1m"`
}

// SchedulerConfig holds the timezone and the scheduled tasks by name.
type SchedulerConfig struct {
	Timezone string                `mapstructure:"timezone" validate:"required"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig defines one scheduled task entry.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// HTTPConfig configures the liveness/health listener.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=1m"`
}

// MessagesConfig holds the static message templates.
type MessagesConfig struct {
	Welcome          string   `mapstructure:"welcome"           validate:"required"`
	Help             string   `mapstructure:"help"              validate:"required"`
	Unauthorized     string   `mapstructure:"unauthorized"      validate:"required"`
	PracticeReminder string   `mapstructure:"practice_reminder" validate:"required"`
	Motivations      []string `mapstructure:"motivations"       validate:"min=1,dive,required"`
}

// Load reads configuration from defaults, the YAML file at path (optional) and
// BOT_* environment variables, then validates the result. A missing file is not
// an error; a missing required value is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return c.validateSemantics()
}
