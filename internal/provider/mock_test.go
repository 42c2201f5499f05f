package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCannedResponse(t *testing.T) {
	m := NewMockProvider().WithResponse("who?", `{"first_name":"A","last_name":"B"}`)

	got, err := m.GenerateResponse(context.Background(), "who?", Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"first_name":"A","last_name":"B"}`, got)
}

func TestMockDefaultResponseIsValidJSON(t *testing.T) {
	m := NewMockProvider()
	got, err := m.GenerateResponse(context.Background(), "anything", Options{})
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(got)))
}

func TestMockDeterministic(t *testing.T) {
	m := NewMockProvider()
	a, err := m.GenerateResponse(context.Background(), "p", Options{})
	require.NoError(t, err)
	b, err := m.GenerateResponse(context.Background(), "p", Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMockGenerateJSONParsesFreeText(t *testing.T) {
	m := NewMockProvider().WithDefaultResponse(`  {"first_name":"A","last_name":"B"}  `)

	raw, err := m.GenerateJSON(context.Background(), "p", Options{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"first_name":"A","last_name":"B"}`, string(raw))
}

func TestMockGenerateJSONRejectsProse(t *testing.T) {
	m := NewMockProvider().WithDefaultResponse("I would rather not.")

	_, err := m.GenerateJSON(context.Background(), "p", Options{})
	require.Error(t, err)

	var pe *JSONParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "I would rather not.", pe.Raw)
}

func TestMockScriptedFuncsTakePriority(t *testing.T) {
	m := NewMockProvider().
		WithResponse("p", "canned").
		WithGenerateFunc(func(ctx context.Context, prompt string, opts Options) (string, error) {
			return "scripted", nil
		})

	got, err := m.GenerateResponse(context.Background(), "p", Options{})
	require.NoError(t, err)
	assert.Equal(t, "scripted", got)
}

func TestGenerateJSONViaTextSetsJSONFormat(t *testing.T) {
	var sawFormat ResponseFormat
	m := NewMockProvider().WithGenerateFunc(func(ctx context.Context, prompt string, opts Options) (string, error) {
		sawFormat = opts.ResponseFormat
		return `[]`, nil
	})

	_, err := GenerateJSONViaText(context.Background(), m, "p", Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, sawFormat)
}
