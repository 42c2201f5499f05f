package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps provider names to their registration entries and tracks
// the default provider. Registration is expected to happen once at
// process start, before concurrent extraction calls begin; the mutex
// keeps lookups safe while extractions run.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]Descriptor
	defaultName string
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Descriptor),
	}
}

// Register adds or overwrites an entry. The first registered provider
// becomes the default until SetDefault says otherwise.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if d.New == nil {
		return fmt.Errorf("provider %q: constructor cannot be nil", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[d.Name] = d
	if r.defaultName == "" {
		r.defaultName = d.Name
	}
	return nil
}

// SetDefault points the registry's default at an already-registered name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	r.defaultName = name
	return nil
}

// Default returns the current default provider name, if any.
func (r *Registry) Default() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName, r.defaultName != ""
}

// Create constructs a fresh provider instance. An empty name resolves to
// the default; an explicit unregistered name is an error, never a silent
// fallback.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	r.mu.RLock()
	if name == "" {
		name = r.defaultName
	}
	if name == "" {
		r.mu.RUnlock()
		return nil, ErrNoProviderRegistered
	}
	d, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return d.New(cfg)
}

// CheckCredentials delegates to the named entry's credential probe.
func (r *Registry) CheckCredentials(name string) (CredentialStatus, error) {
	d, err := r.lookup(name)
	if err != nil {
		return CredentialStatus{}, err
	}
	if d.CheckCredentials == nil {
		return CredentialStatus{OK: true, Detail: "no credentials required"}, nil
	}
	return d.CheckCredentials(), nil
}

// DisplayName delegates to the named entry.
func (r *Registry) DisplayName(name string) (string, error) {
	d, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	return d.DisplayName, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.entries[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return d, nil
}
