package provider

import (
	"context"
	"sync"
)

const mockName = "mock"

// defaultMockResponse keeps the pipeline functional with zero external
// dependencies: one well-formed person record under the common wrapper.
const defaultMockResponse = `{"persons":[{"first_name":"Ada","last_name":"Lovelace","birth_date":"1815-12-10","death_date":"1852-11-27"}]}`

// MockProvider is the deterministic test double. It answers from canned
// per-prompt responses, a scripted function, or an attached replay store,
// falling back to a fixed default. Safe for concurrent use.
type MockProvider struct {
	mu              sync.RWMutex
	responses       map[string]string
	defaultResponse string
	generateFunc    func(ctx context.Context, prompt string, opts Options) (string, error)
	jsonFunc        func(ctx context.Context, prompt string, opts Options) ([]byte, error)
	replay          *ReplayStore
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		responses:       make(map[string]string),
		defaultResponse: defaultMockResponse,
	}
}

// WithResponse cans a response for an exact prompt.
func (m *MockProvider) WithResponse(prompt, response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
	return m
}

// WithDefaultResponse replaces the fallback response.
func (m *MockProvider) WithDefaultResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = response
	return m
}

// WithGenerateFunc scripts the free-text path.
func (m *MockProvider) WithGenerateFunc(fn func(ctx context.Context, prompt string, opts Options) (string, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateFunc = fn
	return m
}

// WithJSONFunc scripts the structured path independently of the free-text one.
func (m *MockProvider) WithJSONFunc(fn func(ctx context.Context, prompt string, opts Options) ([]byte, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jsonFunc = fn
	return m
}

// WithReplayStore answers prompts from previously recorded real responses.
// Prompts absent from the store fall through to canned/default answers.
func (m *MockProvider) WithReplayStore(store *ReplayStore) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replay = store
	return m
}

func (m *MockProvider) GenerateResponse(ctx context.Context, prompt string, opts Options) (string, error) {
	m.mu.RLock()
	fn := m.generateFunc
	replay := m.replay
	canned, hasCanned := m.responses[prompt]
	def := m.defaultResponse
	m.mu.RUnlock()

	if fn != nil {
		return fn(ctx, prompt, opts)
	}
	if replay != nil {
		if resp, ok, err := replay.Get(ctx, prompt); err == nil && ok {
			return resp, nil
		}
	}
	if hasCanned {
		return canned, nil
	}
	return def, nil
}

func (m *MockProvider) GenerateJSON(ctx context.Context, prompt string, opts Options) ([]byte, error) {
	m.mu.RLock()
	fn := m.jsonFunc
	m.mu.RUnlock()

	if fn != nil {
		return fn(ctx, prompt, opts)
	}
	return GenerateJSONViaText(ctx, m, prompt, opts)
}

// MockDescriptor is the registration entry for the test double. It needs
// no credentials, so a registry seeded with it always has a working default.
func MockDescriptor() Descriptor {
	return Descriptor{
		Name:        mockName,
		DisplayName: "Mock (deterministic)",
		CheckCredentials: func() CredentialStatus {
			return CredentialStatus{OK: true, Detail: "no credentials required"}
		},
		New: func(cfg map[string]any) (Provider, error) {
			m := NewMockProvider()
			if cfg != nil {
				if v, ok := cfg["default_response"].(string); ok && v != "" {
					m.WithDefaultResponse(v)
				}
				if v, ok := cfg["responses"].(map[string]string); ok {
					for p, r := range v {
						m.WithResponse(p, r)
					}
				}
				if v, ok := cfg["replay_store"].(*ReplayStore); ok && v != nil {
					m.WithReplayStore(v)
				}
			}
			return m, nil
		},
	}
}
