package provider

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/oyelola-a/lineage-extractor/internal/common"
)

// NewDefaultRegistry builds the process registry. The mock provider is
// registered first so a functioning default always exists with no
// external dependency; live backends are registered opportunistically
// and a failure in one never aborts the others.
func NewDefaultRegistry(cfg *common.Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = common.LoadConfig()
	}

	r := NewRegistry()
	if err := r.Register(MockDescriptor()); err != nil {
		// cannot happen with a well-formed descriptor, but never panic here
		logger.Error("provider.register.mock_failed", "error", err)
	}

	if ok, detail := RegisterOpenAI(r, cfg.Provider.OpenAI, logger); !ok {
		logger.Warn("provider.register.skipped", "provider", openAIName, "reason", detail)
	}
	if ok, detail := RegisterAnthropic(r, cfg.Provider.Anthropic, logger); !ok {
		logger.Warn("provider.register.skipped", "provider", anthropicName, "reason", detail)
	}

	if cfg.Provider.Default != "" {
		if err := r.SetDefault(cfg.Provider.Default); err != nil {
			logger.Warn("provider.default.invalid", "name", cfg.Provider.Default, "error", err)
		}
	}
	return r
}

// RegisterOpenAI registers the OpenAI backend. Returns ok=false with a
// reason instead of an error so callers can keep registering siblings.
func RegisterOpenAI(r *Registry, cfg common.OpenAIConfig, logger *slog.Logger) (bool, string) {
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return false, fmt.Sprintf("invalid base URL %q: %v", cfg.BaseURL, err)
		}
	}
	if cfg.Timeout < 0 {
		return false, fmt.Sprintf("invalid timeout %s", cfg.Timeout)
	}

	err := r.Register(Descriptor{
		Name:             openAIName,
		DisplayName:      "OpenAI",
		CheckCredentials: CheckOpenAICredentials,
		New: func(overrides map[string]any) (Provider, error) {
			pc := OpenAIConfig{
				APIKey:      cfg.APIKey,
				BaseURL:     cfg.BaseURL,
				Model:       cfg.Model,
				Temperature: cfg.Temperature,
				MaxTokens:   cfg.MaxTokens,
				Timeout:     cfg.Timeout,
			}
			applyCommonOverrides(overrides,
				&pc.APIKey, &pc.BaseURL, &pc.Model, &pc.Temperature, &pc.MaxTokens, &pc.Timeout)
			return NewOpenAIProvider(pc, logger), nil
		},
	})
	if err != nil {
		return false, err.Error()
	}
	return true, ""
}

// RegisterAnthropic registers the Anthropic backend, same contract as
// RegisterOpenAI.
func RegisterAnthropic(r *Registry, cfg common.AnthropicConfig, logger *slog.Logger) (bool, string) {
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return false, fmt.Sprintf("invalid base URL %q: %v", cfg.BaseURL, err)
		}
	}
	if cfg.Timeout < 0 {
		return false, fmt.Sprintf("invalid timeout %s", cfg.Timeout)
	}

	err := r.Register(Descriptor{
		Name:             anthropicName,
		DisplayName:      "Anthropic",
		CheckCredentials: CheckAnthropicCredentials,
		New: func(overrides map[string]any) (Provider, error) {
			pc := AnthropicConfig{
				APIKey:      cfg.APIKey,
				BaseURL:     cfg.BaseURL,
				Model:       cfg.Model,
				Temperature: cfg.Temperature,
				MaxTokens:   cfg.MaxTokens,
				Timeout:     cfg.Timeout,
			}
			applyCommonOverrides(overrides,
				&pc.APIKey, &pc.BaseURL, &pc.Model, &pc.Temperature, &pc.MaxTokens, &pc.Timeout)
			return NewAnthropicProvider(pc, logger), nil
		},
	})
	if err != nil {
		return false, err.Error()
	}
	return true, ""
}

// applyCommonOverrides copies recognized keys from a constructor's
// override map onto a backend config. Unrecognized keys and wrong-typed
// values are ignored, not rejected.
func applyCommonOverrides(overrides map[string]any, apiKey, baseURL, model *string, temperature *float32, maxTokens *int, timeout *time.Duration) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["api_key"].(string); ok && v != "" {
		*apiKey = v
	}
	if v, ok := overrides["base_url"].(string); ok && v != "" {
		*baseURL = v
	}
	if v, ok := overrides["model"].(string); ok && v != "" {
		*model = v
	}
	switch v := overrides["temperature"].(type) {
	case float32:
		*temperature = v
	case float64:
		*temperature = float32(v)
	}
	switch v := overrides["max_tokens"].(type) {
	case int:
		*maxTokens = v
	case float64:
		*maxTokens = int(v)
	}
	if v, ok := overrides["timeout"].(time.Duration); ok && v > 0 {
		*timeout = v
	}
}
