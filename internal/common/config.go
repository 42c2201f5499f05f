package common

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Replay   ReplayConfig   `yaml:"replay"`
	Export   ExportConfig   `yaml:"export"`
}

// ProviderConfig holds backend-related configuration
type ProviderConfig struct {
	Default   string          `yaml:"default"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration
type AnthropicConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ReplayConfig holds the response replay store configuration
type ReplayConfig struct {
	Path string `yaml:"path"`
}

// ExportConfig holds spreadsheet export configuration
type ExportConfig struct {
	SheetName string `yaml:"sheet_name"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Default: getEnv("EXTRACT_PROVIDER", ""),
			OpenAI: OpenAIConfig{
				APIKey:      getEnv("OPENAI_API_KEY", ""),
				BaseURL:     getEnv("OPENAI_BASE_URL", ""),
				Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
				MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 2048),
				Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			},
			Anthropic: AnthropicConfig{
				APIKey:      getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL:     getEnv("ANTHROPIC_BASE_URL", ""),
				Model:       getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
				Temperature: getEnvAsFloat32("ANTHROPIC_TEMPERATURE", 0.0),
				MaxTokens:   getEnvAsInt("ANTHROPIC_MAX_TOKENS", 2048),
				Timeout:     getEnvAsDuration("ANTHROPIC_TIMEOUT", 45*time.Second),
			},
		},
		Replay: ReplayConfig{
			Path: getEnv("REPLAY_DB_PATH", ""),
		},
		Export: ExportConfig{
			SheetName: getEnv("EXPORT_SHEET_NAME", "Persons"),
		},
	}
}

// LoadConfigFile overlays values from a YAML file onto cfg. Unset YAML
// fields leave the existing (env-derived) values untouched.
func LoadConfigFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return WrapError(err, "read config file")
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return WrapError(err, "parse config file")
	}
	return nil
}

// Validate checks the loaded configuration for out-of-range values.
func (c *Config) Validate() error {
	if t := c.Provider.OpenAI.Temperature; t < 0 || t > 2 {
		return NewAppError("CONFIG_ERROR", "OPENAI_TEMPERATURE must be between 0 and 2", ErrInvalidInput)
	}
	if t := c.Provider.Anthropic.Temperature; t < 0 || t > 1 {
		return NewAppError("CONFIG_ERROR", "ANTHROPIC_TEMPERATURE must be between 0 and 1", ErrInvalidInput)
	}
	if c.Provider.OpenAI.Timeout < 0 || c.Provider.Anthropic.Timeout < 0 {
		return NewAppError("CONFIG_ERROR", "provider timeouts must not be negative", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
