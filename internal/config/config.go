package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
// Values come from environment variables with sensible defaults.
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Chat model name (default: openai/gpt-4o-mini)
// - LLM_EMBED_MODEL: Embedding model name (default: openai/text-embedding-3-small)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 4000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.0)
// - LLM_TIMEOUT: Request timeout in seconds (default: 60)
//
// Data Configuration:
// - DATASET_PATH: CSV file with the car listings (default: data/cars.csv)
// - BRAND_INDEX_PATH: Pre-built brand knowledge index (default: data/brands.idx)
// - BRAND_SEARCH_TOP_K: Passages returned per brand search (default: 3)
// - PRICING_MODEL_PATH: Pricing model coefficients JSON (default: data/pricing.json)
//
// Agent Configuration:
// - AGENT_MAX_ITERATIONS: Max tool calling iterations per turn (default: 15)
// - AGENT_CALL_TIMEOUT: Per LLM call timeout in seconds (default: 60)
//
// Session Configuration:
// - SESSION_IDLE_TTL: Minutes of inactivity before a session expires (default: 30)
// - SESSION_SWEEP_CRON: Cron expression for the expiry sweep (default: @every 5m)
//
// System Configuration:
// - LOG_LEVEL: debug, info, warn or error (default: info)

type Config struct {
	LLM     LLMConfig     `json:"llm"`
	Data    DataConfig    `json:"data"`
	Agent   AgentConfig   `json:"agent"`
	Session SessionConfig `json:"session"`
	System  SystemConfig  `json:"system"`
}

// LLMConfig holds the configuration for the LLM client.
// Supports any OpenAI-compatible provider.
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	EmbedModel  string  `json:"embed_model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
}

// DataConfig holds the paths of the datasets loaded at startup.
type DataConfig struct {
	DatasetPath      string `json:"dataset_path"`
	BrandIndexPath   string `json:"brand_index_path"`
	BrandSearchTopK  int    `json:"brand_search_top_k"`
	PricingModelPath string `json:"pricing_model_path"`
}

// AgentConfig holds the configuration for the agent loop.
type AgentConfig struct {
	MaxIterations int `json:"max_iterations"` // Max tool calling iterations per turn
	CallTimeout   int `json:"call_timeout"`   // Seconds per LLM call
}

// SessionConfig holds the session lifecycle configuration.
type SessionConfig struct {
	IdleTTLMinutes int    `json:"idle_ttl_minutes"`
	SweepCron      string `json:"sweep_cron"`
}

// SystemConfig holds the system configuration.
type SystemConfig struct {
	LogLevel string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-4o-mini"),
			EmbedModel:  getEnvString("LLM_EMBED_MODEL", "openai/text-embedding-3-small"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 4000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvInt("LLM_TIMEOUT", 60),
		},
		Data: DataConfig{
			DatasetPath:      getEnvString("DATASET_PATH", "data/cars.csv"),
			BrandIndexPath:   getEnvString("BRAND_INDEX_PATH", "data/brands.idx"),
			BrandSearchTopK:  getEnvInt("BRAND_SEARCH_TOP_K", 3),
			PricingModelPath: getEnvString("PRICING_MODEL_PATH", "data/pricing.json"),
		},
		Agent: AgentConfig{
			MaxIterations: getEnvInt("AGENT_MAX_ITERATIONS", 15),
			CallTimeout:   getEnvInt("AGENT_CALL_TIMEOUT", 60),
		},
		Session: SessionConfig{
			IdleTTLMinutes: getEnvInt("SESSION_IDLE_TTL", 30),
			SweepCron:      getEnvString("SESSION_SWEEP_CRON", "@every 5m"),
		},
		System: SystemConfig{
			LogLevel: getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be positive")
	}
	if c.Data.BrandSearchTopK <= 0 {
		return fmt.Errorf("BRAND_SEARCH_TOP_K must be positive")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
