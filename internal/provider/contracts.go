package provider

import (
	"context"
	"encoding/json"
	"strings"
)

// ResponseFormat selects the output mode a backend is asked for.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// Options carries generation parameters. Zero values mean "use the
// backend's default"; fields a given backend does not support are
// ignored, never rejected.
type Options struct {
	SystemPrompt   string
	Temperature    *float32
	MaxTokens      int
	Model          string
	ResponseFormat ResponseFormat
}

// CredentialStatus is the result of a credential probe. Probes never
// fail hard; backends that need no credential report OK.
type CredentialStatus struct {
	OK     bool
	Detail string
}

// Provider is the contract every text-generation backend satisfies.
type Provider interface {
	// GenerateResponse produces free-form text for a prompt.
	GenerateResponse(ctx context.Context, prompt string, opts Options) (string, error)

	// GenerateJSON produces structured output for a prompt. Backends with a
	// native structured-output mode use it; others go through
	// GenerateJSONViaText. The returned bytes are always valid JSON.
	GenerateJSON(ctx context.Context, prompt string, opts Options) ([]byte, error)
}

// Constructor builds a fresh Provider instance. The cfg map carries
// backend-specific overrides (model, temperature, ...); keys a backend
// does not recognize are ignored.
type Constructor func(cfg map[string]any) (Provider, error)

// Descriptor is a provider registration entry: the capability-level
// queries plus the constructor the registry dispatches through.
type Descriptor struct {
	Name             string
	DisplayName      string
	CheckCredentials func() CredentialStatus
	New              Constructor
}

// GenerateJSONViaText is the default structured-output path: ask for JSON
// over the free-text capability, then verify the reply parses. Backends
// without a native JSON mode delegate their GenerateJSON here.
func GenerateJSONViaText(ctx context.Context, p Provider, prompt string, opts Options) ([]byte, error) {
	opts.ResponseFormat = FormatJSON
	raw, err := p.GenerateResponse(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(raw)
	if !json.Valid([]byte(trimmed)) {
		return nil, &JSONParseError{Raw: raw}
	}
	return []byte(trimmed), nil
}
