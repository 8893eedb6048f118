package breaker

import (
	"cmp"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry hands out one Breaker per name. Breakers are created on first use
// with the per-name Config if one was registered, otherwise the defaults.
type Registry struct {
	defaults Config
	opts     []Option

	mu       sync.Mutex
	configs  map[string]Config
	breakers map[string]*Breaker
}

// NewRegistry creates an empty registry. opts apply to every breaker it creates.
func NewRegistry(defaults Config, opts ...Option) *Registry {
	return &Registry{
		defaults: defaults,
		opts:     opts,
		configs:  map[string]Config{},
		breakers: map[string]*Breaker{},
	}
}

// Configure sets the Config used when name is first requested. It has no
// effect on a breaker that already exists.
func (r *Registry) Configure(name string, cfg Config) {
	r.mu.Lock()
	r.configs[name] = cfg
	r.mu.Unlock()
}

// Get returns the breaker for name, creating it if needed.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}

	cfg, ok := r.configs[name]
	if !ok {
		cfg = r.defaults
	}

	b := New(name, cfg, r.opts...)
	r.breakers[name] = b
	return b
}

// Find returns the breaker for name without creating it.
func (r *Registry) Find(name string) (*Breaker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[name]
	return b, ok
}

// All returns every created breaker ordered by name.
func (r *Registry) All() []*Breaker {
	r.mu.Lock()
	all := lo.Values(r.breakers)
	r.mu.Unlock()

	slices.SortFunc(all, func(a, b *Breaker) int { return cmp.Compare(a.name, b.name) })
	return all
}
