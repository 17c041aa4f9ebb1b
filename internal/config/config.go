package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	GradingEventSubject string
	JWTSecret           string
	StatusCacheTTL      time.Duration
	AIProvider          string
	OpenAIAPIKey        string
	GeminiAPIKey        string
	AIModel             string
	AIMaxTokens         int
	AITimeout           time.Duration
	FallbackQuizCeiling float64
	FallbackCodeCeiling int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVALIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Evalio API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("status.cache_ttl", "30s")
	v.SetDefault("grading.event_subject", "evalio.grading")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.timeout_ms", 20000)
	v.SetDefault("fallback.quiz_ceiling", 0.70)
	v.SetDefault("fallback.code_ceiling", 60)

	ttlString := v.GetString("status.cache_ttl")
	if ttlString == "" {
		ttlString = "30s"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid status cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("ai.timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 20000
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		GradingEventSubject: v.GetString("grading.event_subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		StatusCacheTTL:      ttl,
		AIProvider:          strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		GeminiAPIKey:        v.GetString("gemini_api_key"),
		AIModel:             v.GetString("ai.model"),
		AIMaxTokens:         v.GetInt("ai.max_tokens"),
		AITimeout:           time.Duration(timeoutMs) * time.Millisecond,
		FallbackQuizCeiling: v.GetFloat64("fallback.quiz_ceiling"),
		FallbackCodeCeiling: v.GetInt("fallback.code_ceiling"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.FallbackQuizCeiling <= 0 || cfg.FallbackQuizCeiling > 1 {
		cfg.FallbackQuizCeiling = 0.70
	}

	if cfg.FallbackCodeCeiling <= 0 || cfg.FallbackCodeCeiling > 100 {
		cfg.FallbackCodeCeiling = 60
	}

	return cfg, nil
}
