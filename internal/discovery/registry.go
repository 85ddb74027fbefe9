package discovery

import (
	"sync"

	"tokenark/internal/config"
	"tokenark/internal/nft"
)

// Registry hands out providers per chain, caching them for the life of
// a run so every wallet on the same chain shares one client.
type Registry struct {
	cfg  *config.Config
	opts []Option

	mu        sync.Mutex
	providers map[int64]Provider
}

// NewRegistry creates a run-scoped provider registry.
func NewRegistry(cfg *config.Config, opts ...Option) *Registry {
	return &Registry{
		cfg:       cfg,
		opts:      opts,
		providers: make(map[int64]Provider),
	}
}

// Provider returns the provider for a chain, building it on first use.
func (r *Registry) Provider(chain nft.Chain) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if provider, ok := r.providers[chain.ID]; ok {
		return provider, nil
	}
	provider, err := NewProvider(r.cfg, chain, r.opts...)
	if err != nil {
		return nil, err
	}
	r.providers[chain.ID] = provider
	return provider, nil
}
