package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the writing API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventChannel        string
	JWTSecret           string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	OpenAIMaxTokens     int
	AnalysisTemperature float32
	CreditsPerAnalysis  int
	ScoresCacheTTL      time.Duration
	ScoreRateLimit      int
	ScoreRateWindow     time.Duration
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
	v.SetEnvPrefix("WRITING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Writing API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "gema:writing")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 2048)
	v.SetDefault("analysis.temperature", 0.3)
	v.SetDefault("credits.per_analysis", 1)
	v.SetDefault("scores.cache_ttl", "5m")
	v.SetDefault("scores.rate_limit", 5)
	v.SetDefault("scores.rate_window", "1m")

	ttl, err := parseDuration(v.GetString("scores.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid scores cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("scores.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid scores rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventChannel:        v.GetString("events.channel"),
		JWTSecret:           v.GetString("jwt.secret"),
		OpenAIAPIKey:        v.GetString("openai.api_key"),
		OpenAIBaseURL:       v.GetString("openai.base_url"),
		OpenAIModel:         v.GetString("openai.model"),
		OpenAIMaxTokens:     v.GetInt("openai.max_tokens"),
		AnalysisTemperature: float32(v.GetFloat64("analysis.temperature")),
		CreditsPerAnalysis:  v.GetInt("credits.per_analysis"),
		ScoresCacheTTL:      ttl,
		ScoreRateLimit:      v.GetInt("scores.rate_limit"),
		ScoreRateWindow:     window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.CreditsPerAnalysis <= 0 {
		cfg.CreditsPerAnalysis = 1
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
