package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables (prefixed WORDWELL_, nested keys joined with _) take
// precedence over values from config.yaml in the working directory.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file: config.yaml in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing file is fine; environment variables may carry everything.
	}

	// Environment variables: WORDWELL_DATABASE_URL, WORDWELL_LLM_GEMINI_API_KEY, ...
	v.SetEnvPrefix("WORDWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Worker.IdleDelay <= cfg.Worker.ItemDelay {
		return nil, fmt.Errorf(
			"configuration validation failed: worker idle delay (%s) must exceed item delay (%s)",
			cfg.Worker.IdleDelay, cfg.Worker.ItemDelay,
		)
	}

	return &cfg, nil
}

// setDefaults registers default values for everything that has a sensible
// one. Secrets (database URL, JWT secret, API key) have no defaults and must
// be supplied by the environment.
func setDefaults(v *viper.Viper) {
	// Secrets default to empty so viper's Unmarshal sees the keys and
	// AutomaticEnv can fill them; required-validation rejects the empties.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("llm.gemini_api_key", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.prompt_template_path", "prompts/word_analysis.tmpl")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("worker.max_batch_words", 20000)
	v.SetDefault("worker.claim_batch_size", 5)
	v.SetDefault("worker.item_delay", 2*time.Second)
	v.SetDefault("worker.idle_delay", 10*time.Second)
	v.SetDefault("worker.error_message_limit", 500)

	v.SetDefault("stream.max_words", 50)
	v.SetDefault("stream.word_delay", 100*time.Millisecond)
}
