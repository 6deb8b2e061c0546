package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`

	// Conversation context retention: sliding window over turn count and
	// sliding TTL over time, both re-armed on every append.
	ContextWindowTurns int `env:"CONTEXT_WINDOW_TURNS" envDefault:"30"`
	ContextTTLSeconds  int `env:"CONTEXT_TTL_SECONDS" envDefault:"86400"`

	AuthTokenTTLHours      int `env:"AUTH_TOKEN_TTL_HOURS" envDefault:"168"`
	GenerateTimeoutSeconds int `env:"GENERATE_TIMEOUT_SECONDS" envDefault:"30"`
	ChatRetentionDays      int `env:"CHAT_RETENTION_DAYS" envDefault:"90"`

	// When true, generated replies are delivered as ordered chunk events
	// before the final reply event. When false, one reply event per turn.
	StreamReplies bool `env:"STREAM_REPLIES" envDefault:"true"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) ContextTTL() time.Duration {
	return time.Duration(c.ContextTTLSeconds) * time.Second
}

func (c *Config) AuthTokenTTL() time.Duration {
	return time.Duration(c.AuthTokenTTLHours) * time.Hour
}

func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSeconds) * time.Second
}

func (c *Config) ChatRetention() time.Duration {
	return time.Duration(c.ChatRetentionDays) * 24 * time.Hour
}

func (c *Config) Validate(isProduction bool) error {
	if c.ContextWindowTurns < 2 {
		return fmt.Errorf("CONTEXT_WINDOW_TURNS must be at least 2 (one user turn plus one assistant turn)")
	}
	if c.ContextTTLSeconds <= 0 {
		return fmt.Errorf("CONTEXT_TTL_SECONDS must be positive")
	}

	if isProduction {
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required in production")
		}
		for _, weak := range knownWeakSecrets {
			if c.OpenAIAPIKey == weak {
				return fmt.Errorf("OPENAI_API_KEY is a known weak default; set a real key")
			}
		}
		if len(c.RedisURL) >= 8 && c.RedisURL[:8] == "redis://" {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
