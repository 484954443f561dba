package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// Supported LLM providers.
const (
	ProviderBlueLM = "bluelm"
	ProviderGemini = "gemini"
)

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Enabled turns AI enrichment on; when false stored messages are used as-is.
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider" validate:"oneof=bluelm gemini"`

	// bluelm gateway
	URL          string  `mapstructure:"url" validate:"omitempty,url"`
	AppID        string  `mapstructure:"app_id"`
	AppKey       string  `mapstructure:"app_key"`
	Model        string  `mapstructure:"model" validate:"required"`
	Temperature  float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxNewTokens int     `mapstructure:"max_new_tokens" validate:"gt=0"`

	// gemini
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	PromptTemplatePath string `mapstructure:"prompt_template_path"`

	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	BaseBackoff time.Duration `mapstructure:"base_backoff" validate:"gte=0"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff" validate:"gtefield=BaseBackoff"`

	CacheSize int           `mapstructure:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

// TaskConfig contains settings for background reminder delivery.
type TaskConfig struct {
	WorkerCount  int           `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize    int           `mapstructure:"queue_size" validate:"gt=0"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	BatchSize    int           `mapstructure:"batch_size" validate:"gt=0"`
	// DeliveryTimeout bounds one reminder's generation plus dispatch.
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" validate:"gt=0"`
}

// NotifyConfig contains settings for the delivery channels.
type NotifyConfig struct {
	LiveWriteTimeout  time.Duration `mapstructure:"live_write_timeout" validate:"gt=0"`
	PresenceBroadcast bool          `mapstructure:"presence_broadcast"`
	// BrokerURL enables the AMQP channel when set.
	BrokerURL      string `mapstructure:"broker_url" validate:"omitempty,url"`
	BrokerExchange string `mapstructure:"broker_exchange"`
}
