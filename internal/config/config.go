package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
	Stream   StreamConfig   `mapstructure:"stream" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost" validate:"omitempty,gte=4,lte=31"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName          string `mapstructure:"model_name" validate:"required"`
	PromptTemplatePath string `mapstructure:"prompt_template_path" validate:"required"`
	MaxRetries         int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=30"`
}

// WorkerConfig contains the queue worker loop's policy knobs.
// The defaults implement the service's rate-limiting discipline against
// the external generation API.
type WorkerConfig struct {
	// MaxBatchWords bounds a single bulk submission.
	MaxBatchWords int `mapstructure:"max_batch_words" validate:"required,gt=0"`

	// ClaimBatchSize is the number of pending items claimed per tick.
	ClaimBatchSize int `mapstructure:"claim_batch_size" validate:"required,gt=0"`

	// ItemDelay is the pause between two items within one tick.
	ItemDelay time.Duration `mapstructure:"item_delay" validate:"required"`

	// IdleDelay is the pause between ticks. It bounds polling frequency and
	// must be longer than ItemDelay.
	IdleDelay time.Duration `mapstructure:"idle_delay" validate:"required"`

	// ErrorMessageLimit truncates stored per-item failure reasons.
	ErrorMessageLimit int `mapstructure:"error_message_limit" validate:"required,gt=0"`
}

// StreamConfig contains the streaming submission path's policy knobs.
type StreamConfig struct {
	// MaxWords bounds a single streaming submission. Deliberately far
	// smaller than the async batch cap: the caller is actively waiting.
	MaxWords int `mapstructure:"max_words" validate:"required,gt=0"`

	// WordDelay is the pause between two words within one connection.
	WordDelay time.Duration `mapstructure:"word_delay" validate:"required"`
}
