package providers

import (
	"fmt"
	"slices"
	"sync"

	"lookout/internal/config"
	"lookout/internal/services"
	"lookout/internal/services/llm"
)

// ErrNoneConfigured is returned by Select when the provider list is empty.
var ErrNoneConfigured = fmt.Errorf("%w: no provider configured", services.ErrConfiguration)

// Endpoint pairs a configured provider with its ready client.
type Endpoint struct {
	Name   string
	Model  string
	Client *llm.Client
}

// Pool hands out endpoints in strict rotation. There is no weighting, no
// health tracking, and no backoff: a failing provider gets its next turn
// like any other. The cursor advance is the only shared mutation in the
// pipeline, so it happens under the lock as a single read-and-increment.
type Pool struct {
	mu         sync.Mutex
	entries    []Endpoint
	selections []uint64
	cursor     int
	source     []config.Provider
}

// Usage reports how often one endpoint has been handed out. The counts are
// observational; selection never consults them.
type Usage struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Selections uint64 `json:"selections"`
}

// FromConfig builds a pool with one client per configured provider,
// preserving configuration order.
func FromConfig(cfg *config.Config) *Pool {
	providers := cfg.ProviderEndpoints()
	entries := make([]Endpoint, 0, len(providers))
	for _, p := range providers {
		entries = append(entries, Endpoint{
			Name:  p.Name,
			Model: p.Model,
			Client: llm.NewClient(llm.Config{
				APIKey:  p.APIKey,
				BaseURL: p.BaseURL,
				Model:   p.Model,
			}),
		})
	}
	return &Pool{entries: entries, selections: make([]uint64, len(entries)), source: providers}
}

// NewPool builds a pool from prepared endpoints.
func NewPool(entries []Endpoint) *Pool {
	cloned := slices.Clone(entries)
	return &Pool{entries: cloned, selections: make([]uint64, len(cloned))}
}

// Select returns the endpoint at the cursor and advances the rotation.
func (p *Pool) Select() (Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) == 0 {
		return Endpoint{}, ErrNoneConfigured
	}
	entry := p.entries[p.cursor]
	p.selections[p.cursor]++
	p.cursor = (p.cursor + 1) % len(p.entries)
	return entry, nil
}

// Size reports how many providers are configured.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Names lists the configured provider names in rotation order.
func (p *Pool) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.entries))
	for i, entry := range p.entries {
		names[i] = entry.Name
	}
	return names
}

// Stats lists per-endpoint selection counts in rotation order.
func (p *Pool) Stats() []Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	usage := make([]Usage, len(p.entries))
	for i, entry := range p.entries {
		usage[i] = Usage{Name: entry.Name, Model: entry.Model, Selections: p.selections[i]}
	}
	return usage
}

// Matches reports whether the pool was built from exactly this provider
// list. Configuration reloads keep the existing pool (and its cursor) when
// nothing about the providers changed.
func (p *Pool) Matches(providers []config.Provider) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Equal(p.source, providers)
}
