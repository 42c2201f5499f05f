package provider

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyelola-a/lineage-extractor/internal/common"
)

func stubDescriptor(name string) Descriptor {
	return Descriptor{
		Name:        name,
		DisplayName: "Stub " + name,
		CheckCredentials: func() CredentialStatus {
			return CredentialStatus{OK: true, Detail: "no credentials required"}
		},
		New: func(cfg map[string]any) (Provider, error) {
			return NewMockProvider(), nil
		},
	}
}

func TestRegistryFirstRegisteredBecomesDefault(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDescriptor("first")))
	require.NoError(t, r.Register(stubDescriptor("second")))

	name, ok := r.Default()
	require.True(t, ok)
	assert.Equal(t, "first", name)
}

func TestRegistrySetDefault(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDescriptor("a")))
	require.NoError(t, r.Register(stubDescriptor("b")))

	require.NoError(t, r.SetDefault("b"))
	name, _ := r.Default()
	assert.Equal(t, "b", name)

	err := r.SetDefault("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestRegistryCreateUnknownNeverFallsBack(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDescriptor("a")))

	_, err := r.Create("nonexistent", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProvider))
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistryCreateEmptyNameUsesDefault(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(MockDescriptor()))

	p, err := r.Create("", nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestRegistryCreateFreshInstances(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(MockDescriptor()))

	a, err := r.Create("mock", nil)
	require.NoError(t, err)
	b, err := r.Create("mock", nil)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("", nil)
	assert.True(t, errors.Is(err, ErrNoProviderRegistered))
}

func TestRegistryIdempotentOverwrite(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDescriptor("a")))

	d := stubDescriptor("a")
	d.DisplayName = "Replaced"
	require.NoError(t, r.Register(d))

	display, err := r.DisplayName("a")
	require.NoError(t, err)
	assert.Equal(t, "Replaced", display)
	assert.Len(t, r.Names(), 1)
}

func TestRegistryCapabilityQueries(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(MockDescriptor()))

	display, err := r.DisplayName("mock")
	require.NoError(t, err)
	assert.Equal(t, "Mock (deterministic)", display)

	creds, err := r.CheckCredentials("mock")
	require.NoError(t, err)
	assert.True(t, creds.OK)

	_, err = r.DisplayName("missing")
	assert.True(t, errors.Is(err, ErrUnknownProvider))
	_, err = r.CheckCredentials("missing")
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestRegistryRejectsBadDescriptors(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Descriptor{Name: "", New: stubDescriptor("x").New}))
	assert.Error(t, r.Register(Descriptor{Name: "x", New: nil}))
}

func TestRegisterLiveBackendFailureTolerant(t *testing.T) {
	logger := slog.Default()
	r := NewRegistry()
	require.NoError(t, r.Register(MockDescriptor()))

	// a misconfigured backend reports not-registered instead of aborting
	ok, detail := RegisterOpenAI(r, common.OpenAIConfig{BaseURL: "::not a url::"}, logger)
	assert.False(t, ok)
	assert.NotEmpty(t, detail)

	// siblings still register fine
	ok, _ = RegisterAnthropic(r, common.AnthropicConfig{}, logger)
	assert.True(t, ok)

	assert.NotContains(t, r.Names(), "openai")
	assert.Contains(t, r.Names(), "anthropic")

	// default stayed on the mock
	name, _ := r.Default()
	assert.Equal(t, "mock", name)
}

func TestNewDefaultRegistryAlwaysHasWorkingDefault(t *testing.T) {
	cfg := &common.Config{}
	r := NewDefaultRegistry(cfg, slog.Default())

	name, ok := r.Default()
	require.True(t, ok)
	assert.Equal(t, "mock", name)

	p, err := r.Create("", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	raw, err := p.GenerateJSON(ctx, "anything", Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestConstructorOverrides(t *testing.T) {
	r := NewRegistry()
	ok, _ := RegisterOpenAI(r, common.OpenAIConfig{Model: "gpt-4o-mini"}, slog.Default())
	require.True(t, ok)

	p, err := r.Create("openai", map[string]any{
		"model":       "gpt-4o",
		"temperature": 0.3,
		"unsupported": "ignored, not rejected",
	})
	require.NoError(t, err)

	op, isOpenAI := p.(*OpenAIProvider)
	require.True(t, isOpenAI)
	assert.Equal(t, "gpt-4o", op.cfg.Model)
	assert.InDelta(t, 0.3, float64(op.cfg.Temperature), 1e-6)
}
