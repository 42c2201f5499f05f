package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const anthropicName = "anthropic"

const anthropicVersion = "2023-06-01"

// Anthropic has no json_object response format, so the structured path
// leans on the system prompt plus local JSON validation.
const anthropicJSONSystemPrompt = "You are a precise data extraction engine. " +
	"Respond with a single JSON value only. Do not add prose, explanations or markdown fences."

// AnthropicConfig configures the Anthropic messages client.
type AnthropicConfig struct {
	APIKey      string // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL     string // default https://api.anthropic.com
	Model       string // e.g., "claude-3-5-haiku-latest"
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// AnthropicProvider talks to the Anthropic messages endpoint.
type AnthropicProvider struct {
	cfg    AnthropicConfig
	http   *http.Client
	logger *slog.Logger
}

func NewAnthropicProvider(cfg AnthropicConfig, logger *slog.Logger) *AnthropicProvider {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicProvider{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (p *AnthropicProvider) GenerateResponse(ctx context.Context, prompt string, opts Options) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := p.cfg.Model
	if opts.Model != "" {
		model = opts.Model
	}
	temperature := p.cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := p.cfg.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	body := map[string]any{
		"model":       model,
		"temperature": temperature,
		"max_tokens":  maxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	if opts.SystemPrompt != "" {
		body["system"] = opts.SystemPrompt
	}

	p.logger.Info("provider.anthropic.request",
		"req_id", rid, "model", model, "prompt_len", len(prompt))

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/messages"
	raw, status, err := p.post(ctx, endpoint, body)
	if err != nil {
		p.logger.Error("provider.anthropic.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", &InvocationError{Provider: anthropicName, Operation: "GenerateResponse", StatusCode: status, Err: err}
	}

	var mr struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", &InvocationError{Provider: anthropicName, Operation: "GenerateResponse", Err: fmt.Errorf("decode response: %w", err)}
	}

	var b strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &InvocationError{Provider: anthropicName, Operation: "GenerateResponse", Err: fmt.Errorf("no text content in response")}
	}

	p.logger.Info("provider.anthropic.response",
		"req_id", rid, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())
	return b.String(), nil
}

// GenerateJSON uses the default free-text-then-parse path with the
// policy-fixed structured system prompt.
func (p *AnthropicProvider) GenerateJSON(ctx context.Context, prompt string, opts Options) ([]byte, error) {
	opts.SystemPrompt = anthropicJSONSystemPrompt
	return GenerateJSONViaText(ctx, p, prompt, opts)
}

func (p *AnthropicProvider) post(ctx context.Context, url string, body map[string]any) ([]byte, int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("anthropic http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			p.logger.Warn("provider.anthropic.body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("anthropic status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.StatusCode, nil
}

// CheckAnthropicCredentials probes the environment-sourced secret.
func CheckAnthropicCredentials() CredentialStatus {
	key := os.Getenv("ANTHROPIC_API_KEY")
	switch {
	case key == "":
		return CredentialStatus{OK: false, Detail: "ANTHROPIC_API_KEY is not set"}
	case !strings.HasPrefix(key, "sk-ant-"):
		return CredentialStatus{OK: false, Detail: "ANTHROPIC_API_KEY does not look like an Anthropic key (expected sk-ant- prefix)"}
	default:
		return CredentialStatus{OK: true, Detail: "key present"}
	}
}
