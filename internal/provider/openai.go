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

const openAIName = "openai"

// Policy-fixed system prompt for the structured-output path. Callers can
// override everything else, not this.
const openAIJSONSystemPrompt = "You are a precise data extraction engine. " +
	"Respond with a single JSON value only - no prose, no markdown fences."

// OpenAIConfig configures the OpenAI chat/completions client.
type OpenAIConfig struct {
	APIKey      string  // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string  // default https://api.openai.com/v1
	Model       string  // e.g., "gpt-4o-mini"
	Temperature float32 // 0..2
	MaxTokens   int
	Timeout     time.Duration // http client timeout
}

// OpenAIProvider talks to the OpenAI chat/completions endpoint. It has a
// native structured-output mode (response_format json_object).
type OpenAIProvider struct {
	cfg    OpenAIConfig
	http   *http.Client
	logger *slog.Logger
}

func NewOpenAIProvider(cfg OpenAIConfig, logger *slog.Logger) *OpenAIProvider {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
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
	return &OpenAIProvider{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, opts Options) (string, error) {
	return p.complete(ctx, "GenerateResponse", prompt, opts)
}

// GenerateJSON uses the native json_object response format. The structured
// system prompt is fixed by policy; caller model/temperature/token
// overrides still apply.
func (p *OpenAIProvider) GenerateJSON(ctx context.Context, prompt string, opts Options) ([]byte, error) {
	opts.SystemPrompt = openAIJSONSystemPrompt
	opts.ResponseFormat = FormatJSON

	content, err := p.complete(ctx, "GenerateJSON", prompt, opts)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(content)
	if !json.Valid([]byte(trimmed)) {
		return nil, &JSONParseError{Raw: content}
	}
	return []byte(trimmed), nil
}

func (p *OpenAIProvider) complete(ctx context.Context, op, prompt string, opts Options) (string, error) {
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

	messages := make([]map[string]any, 0, 2)
	if opts.SystemPrompt != "" {
		messages = append(messages, map[string]any{"role": "system", "content": opts.SystemPrompt})
	}
	messages = append(messages, map[string]any{"role": "user", "content": prompt})

	body := map[string]any{
		"model":       model,
		"temperature": temperature,
		"max_tokens":  maxTokens,
		"messages":    messages,
	}
	if opts.ResponseFormat == FormatJSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	p.logger.Info("provider.openai.request",
		"req_id", rid, "op", op, "model", model, "prompt_len", len(prompt))

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	raw, status, err := p.post(ctx, endpoint, body)
	if err != nil {
		p.logger.Error("provider.openai.http_error",
			"req_id", rid, "op", op, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", &InvocationError{Provider: openAIName, Operation: op, StatusCode: status, Err: err}
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", &InvocationError{Provider: openAIName, Operation: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		return "", &InvocationError{Provider: openAIName, Operation: op, Err: fmt.Errorf("no choices in response")}
	}

	p.logger.Info("provider.openai.response",
		"req_id", rid, "op", op, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())
	return cc.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) post(ctx context.Context, url string, body map[string]any) ([]byte, int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			p.logger.Warn("provider.openai.body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.StatusCode, nil
}

// CheckOpenAICredentials probes the environment-sourced secret. It never
// fails hard; a malformed or absent key is reported in Detail.
func CheckOpenAICredentials() CredentialStatus {
	key := os.Getenv("OPENAI_API_KEY")
	switch {
	case key == "":
		return CredentialStatus{OK: false, Detail: "OPENAI_API_KEY is not set"}
	case !strings.HasPrefix(key, "sk-"):
		return CredentialStatus{OK: false, Detail: "OPENAI_API_KEY does not look like an OpenAI key (expected sk- prefix)"}
	default:
		return CredentialStatus{OK: true, Detail: "key present"}
	}
}
