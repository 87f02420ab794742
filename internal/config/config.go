package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	Port             string        `validate:"required,numeric"`
	Environment      string        `validate:"oneof=development production test"`
	LogLevel         string        `validate:"oneof=debug info warn error"`
	EventsAPIURL     string        `validate:"required,url"`
	EventsAPIKey     string        `validate:"required"`
	EventsAPITimeout time.Duration `validate:"gt=0"`
	DefaultRegion    string        `validate:"required"`
	MapScriptURL     string        `validate:"required,url"`
	MapStyleURL      string        `validate:"required,url"`
	CORSOrigins      []string      `validate:"min=1,dive,required"`
	RulesFile        string
	SessionIdle      time.Duration `validate:"gt=0"`
}

func LoadConfig() (*Config, error) {
	timeout, err := time.ParseDuration(getEnvWithDefault("EVENTS_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("EVENTS_API_TIMEOUT is invalid: %w", err)
	}
	idle, err := time.ParseDuration(getEnvWithDefault("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT is invalid: %w", err)
	}

	cfg := &Config{
		Port:             getEnvWithDefault("PORT", "8080"),
		Environment:      getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:         strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		EventsAPIURL:     getEnvWithDefault("EVENTS_API_URL", "https://connpass.com/api/v2"),
		EventsAPIKey:     os.Getenv("EVENTS_API_KEY"),
		EventsAPITimeout: timeout,
		DefaultRegion:    getEnvWithDefault("DEFAULT_PREFECTURE", "tokyo"),
		MapScriptURL:     getEnvWithDefault("MAP_SCRIPT_URL", "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"),
		MapStyleURL:      getEnvWithDefault("MAP_STYLE_URL", "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"),
		CORSOrigins:      splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
		RulesFile:        os.Getenv("RULES_FILE"),
		SessionIdle:      idle,
	}

	if cfg.EventsAPIKey == "" {
		return nil, fmt.Errorf("EVENTS_API_KEY is required")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
