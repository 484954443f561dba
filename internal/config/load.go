package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKPULSE_SERVER_PORT.
const EnvPrefix = "TASKPULSE"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and provider-specific requirements.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.LLM.Enabled {
		switch cfg.LLM.Provider {
		case ProviderBlueLM:
			if cfg.LLM.URL == "" || cfg.LLM.AppID == "" || cfg.LLM.AppKey == "" {
				return fmt.Errorf("config validation failed: llm.url, llm.app_id and llm.app_key are required for provider %s",
					ProviderBlueLM)
			}
		case ProviderGemini:
			if cfg.LLM.GeminiAPIKey == "" || cfg.LLM.GeminiModel == "" {
				return fmt.Errorf("config validation failed: llm.gemini_api_key and llm.gemini_model are required for provider %s",
					ProviderGemini)
			}
		}
	}

	if cfg.Notify.BrokerURL != "" && cfg.Notify.BrokerExchange == "" {
		return errors.New("config validation failed: notify.broker_exchange is required when notify.broker_url is set")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.provider", ProviderBlueLM)
	v.SetDefault("llm.url", "https://api-ai.vivo.com.cn/vivogpt/completions")
	v.SetDefault("llm.model", "vivo-BlueLM-TB-Pro")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_new_tokens", 512)
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.base_backoff", 2*time.Second)
	v.SetDefault("llm.max_backoff", 10*time.Second)
	v.SetDefault("llm.cache_size", 256)
	v.SetDefault("llm.cache_ttl", 10*time.Minute)

	v.SetDefault("task.worker_count", 4)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.poll_interval", 30*time.Second)
	v.SetDefault("task.batch_size", 50)
	v.SetDefault("task.delivery_timeout", 2*time.Minute)

	v.SetDefault("notify.live_write_timeout", 5*time.Second)
	v.SetDefault("notify.presence_broadcast", true)
	v.SetDefault("notify.broker_exchange", "taskpulse.notifications")
}

// bindEnvs registers keys without defaults so AutomaticEnv can see them
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"llm.app_id",
		"llm.app_key",
		"llm.gemini_api_key",
		"llm.prompt_template_path",
		"notify.broker_url",
	} {
		_ = v.BindEnv(key)
	}
}
