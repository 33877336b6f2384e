package config

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	X         XConfig         `mapstructure:"x"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// XConfig configures the X API clients. The bearer token is the app-level
// token used by the reply search endpoint; per-owner publish tokens come from
// the credentials table instead.
type XConfig struct {
	APIBaseURL           string `mapstructure:"api_base_url"`
	BearerToken          string `mapstructure:"bearer_token"`
	PublishRetryAttempts uint   `mapstructure:"publish_retry_attempts"`
}

type SchedulerConfig struct {
	Timezone              string `mapstructure:"timezone" validate:"required,timezone"`
	FloorIntervalHours    int    `mapstructure:"floor_interval_hours" validate:"required,min=1"`
	ReplyWindowMinutes    int    `mapstructure:"reply_window_minutes" validate:"required,min=1"`
	PollIntervalSeconds   int    `mapstructure:"poll_interval_seconds" validate:"required,min=1"`
	RescanIntervalMinutes int    `mapstructure:"rescan_interval_minutes" validate:"required,min=1"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/xlearn")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "xlearn")
	v.SetDefault("database.username", "xlearn")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("x.api_base_url", "https://api.x.com")
	v.SetDefault("x.publish_retry_attempts", 3)
	v.SetDefault("scheduler.timezone", "US/Eastern")
	v.SetDefault("scheduler.floor_interval_hours", 3)
	v.SetDefault("scheduler.reply_window_minutes", 10)
	v.SetDefault("scheduler.poll_interval_seconds", 10)
	v.SetDefault("scheduler.rescan_interval_minutes", 1)

	// Also bind OpenAI config to environment variables; env values take
	// precedence over the config file
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}

	// Bind X bearer token to environment variable
	if err := v.BindEnv("x.bearer_token", "X_BEARER_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind X_BEARER_TOKEN environment variable: %w", err)
	}

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
