package provider

import (
	"context"
	"fmt"
	"sync"
)

// Factory creates a Provider for a platform from the named profile section
// of the credentials file.
type Factory func(ctx context.Context, profilePath string) (Provider, error)

// Registry manages platform provider factories and caches created providers
// for the lifetime of a run.
type Registry interface {
	// Register adds a new platform provider factory.
	Register(platform string, factory Factory) error
	// Create instantiates (or returns the cached) provider for a platform.
	Create(ctx context.Context, platform string) (Provider, error)
	// Platforms returns the registered platform keys.
	Platforms() []string
}

type registry struct {
	mu          sync.RWMutex
	profilePath string
	factories   map[string]Factory
	providers   map[string]Provider
}

// NewRegistry creates a provider registry backed by one profile file.
func NewRegistry(profilePath string) Registry {
	return &registry{
		profilePath: profilePath,
		factories:   make(map[string]Factory),
		providers:   make(map[string]Provider),
	}
}

func (r *registry) Register(platform string, factory Factory) error {
	if platform == "" {
		return fmt.Errorf("platform name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[platform]; exists {
		return fmt.Errorf("platform %q is already registered", platform)
	}

	r.factories[platform] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, platform string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[platform]; ok {
		return p, nil
	}

	factory, exists := r.factories[platform]
	if !exists {
		return nil, fmt.Errorf("platform %q is not registered", platform)
	}

	p, err := factory(ctx, r.profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %q provider: %w", platform, err)
	}
	r.providers[platform] = p
	return p, nil
}

func (r *registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]string, 0, len(r.factories))
	for platform := range r.factories {
		platforms = append(platforms, platform)
	}
	return platforms
}
