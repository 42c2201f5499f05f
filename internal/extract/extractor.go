package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oyelola-a/lineage-extractor/constants"
	"github.com/oyelola-a/lineage-extractor/internal/provider"
)

// System prompt for the free-text fallback path. Used only when the caller
// did not set one; the structured path's system prompt is owned by each
// provider.
const fallbackSystemPrompt = "You extract biographical data from historical documents. " +
	"Answer with the requested JSON and nothing else."

// Stage labels for failure reporting.
const (
	stageProvider   = "provider"
	stageParse      = "parse"
	stageValidation = "validation"
)

// Result is the tagged outcome of one extraction, serializable to the
// wire shape. Data holds the normalized sequence - validated records on
// success, the best-effort non-conforming sequence on validation failure.
// Records is the typed view, populated only on success.
type Result struct {
	Success     bool           `json:"success"`
	Data        []any          `json:"data,omitempty"`
	Error       string         `json:"error,omitempty"`
	Errors      []FieldError   `json:"errors,omitempty"`
	RawResponse string         `json:"rawResponse,omitempty"`
	Records     []PersonRecord `json:"-"`
}

// Options selects and tunes the backend for one extraction call. A
// supplied instance wins over a name; a name wins over the registry
// default.
type Options struct {
	ProviderName     string
	ProviderInstance provider.Provider
	ProviderOptions  provider.Options
}

// Extractor composes prompt building, provider invocation, response
// normalization and schema validation into one operation per document.
// It holds no per-call state; concurrent Extract calls are independent.
type Extractor struct {
	registry *provider.Registry
	logger   *slog.Logger
}

func NewExtractor(registry *provider.Registry, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{registry: registry, logger: logger}
}

// Extract runs the pipeline for one document text. Registry misuse
// (unknown name, nothing registered) is returned as an error; every other
// failure is reported inside the Result with its stage attached.
func (e *Extractor) Extract(ctx context.Context, documentText string, opts Options) (Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	// Empty document text is accepted and forwarded; the backend decides
	// what an empty document yields.
	prompt := BuildPrompt(documentText)

	p, name, err := e.resolveProvider(opts)
	if err != nil {
		return Result{}, err
	}

	e.logger.Info("extract.start",
		"req_id", rid, "provider", name, "text_len", len(documentText))

	records, rawText, failure := e.generate(ctx, p, prompt, opts.ProviderOptions)
	if failure != nil {
		e.logger.Error("extract.generate_failed",
			"req_id", rid, "provider", name, "stage", failure.stage, "error", failure.err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return Result{
			Success:     false,
			Error:       fmt.Sprintf("%s: %v", failure.stage, failure.err),
			RawResponse: rawText,
		}, nil
	}

	// Light cleanup before validation: map free-form gender labels onto
	// the enum. Unknown labels are left for the validator to report.
	records = canonicalizeGenders(records)

	if err := ValidateRecords(records); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			e.logger.Warn("extract.validation_failed",
				"req_id", rid, "provider", name, "errors", len(ve.Errors),
				"elapsed_ms", time.Since(start).Milliseconds())
			return Result{
				Success: false,
				Data:    ve.Data,
				Error:   fmt.Sprintf("%s: %v", stageValidation, ve),
				Errors:  ve.Errors,
			}, nil
		}
		return Result{
			Success: false,
			Data:    records,
			Error:   fmt.Sprintf("%s: %v", stageValidation, err),
		}, nil
	}

	typed, err := decodeRecords(records)
	if err != nil {
		return Result{
			Success: false,
			Data:    records,
			Error:   fmt.Sprintf("%s: %v", stageValidation, err),
		}, nil
	}

	e.logger.Info("extract.ok",
		"req_id", rid, "provider", name, "records", len(typed),
		"elapsed_ms", time.Since(start).Milliseconds())
	return Result{Success: true, Data: records, Records: typed}, nil
}

// resolveProvider applies the instance > name > default precedence.
// Registry errors propagate unchanged.
func (e *Extractor) resolveProvider(opts Options) (provider.Provider, string, error) {
	if opts.ProviderInstance != nil {
		return opts.ProviderInstance, "caller-supplied", nil
	}
	p, err := e.registry.Create(opts.ProviderName, nil)
	if err != nil {
		return nil, "", err
	}
	name := opts.ProviderName
	if name == "" {
		name, _ = e.registry.Default()
	}
	return p, name, nil
}

type stageFailure struct {
	stage string
	err   error
}

// generate runs the structured-output attempt and, on any failure there
// (provider error or parse error), a single free-text fallback. No
// further retries; backoff policy belongs to the backends.
func (e *Extractor) generate(ctx context.Context, p provider.Provider, prompt string, popts provider.Options) ([]any, string, *stageFailure) {
	raw, err := p.GenerateJSON(ctx, prompt, popts)
	if err == nil {
		if records, nErr := Normalize(string(raw)); nErr == nil {
			return records, "", nil
		}
	}

	fopts := popts
	if fopts.SystemPrompt == "" {
		fopts.SystemPrompt = fallbackSystemPrompt
	}
	fopts.ResponseFormat = provider.FormatText

	text, err := p.GenerateResponse(ctx, prompt, fopts)
	if err != nil {
		return nil, "", &stageFailure{stage: stageProvider, err: err}
	}

	records, nErr := Normalize(text)
	if nErr != nil {
		return nil, text, &stageFailure{stage: stageParse, err: nErr}
	}
	return records, "", nil
}

// canonicalizeGenders returns a copy of the sequence with gender labels
// like "female" or "M" mapped onto the Gender enum. Nothing else is
// touched and the input is never mutated.
func canonicalizeGenders(records []any) []any {
	out := make([]any, len(records))
	for i, el := range records {
		rec, ok := el.(map[string]any)
		if !ok {
			out[i] = el
			continue
		}
		label, ok := rec["gender"].(string)
		if !ok {
			out[i] = rec
			continue
		}
		canon, known := constants.CanonicalizeGender(label)
		if !known || string(canon) == label {
			out[i] = rec
			continue
		}
		copied := make(map[string]any, len(rec))
		for k, v := range rec {
			copied[k] = v
		}
		copied["gender"] = string(canon)
		out[i] = copied
	}
	return out
}

// decodeRecords turns the validated generic sequence into typed records.
func decodeRecords(records []any) ([]PersonRecord, error) {
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	var typed []PersonRecord
	if err := json.Unmarshal(b, &typed); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return typed, nil
}
