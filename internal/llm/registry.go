package llm

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Factory builds a Completer from provider options.
type Factory func(opts Options) (Completer, error)

// Registry holds the mapping between provider names and their factories.
type Registry struct {
	factories map[string]Factory
	logger    *zap.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		logger:    logger.Named("llm.registry"),
	}
}

// DefaultRegistry returns a registry with every built-in provider.
func DefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(ProviderOpenAI, func(opts Options) (Completer, error) { return NewOpenAIClient(opts) })
	r.Register(ProviderAnthropic, func(opts Options) (Completer, error) { return NewAnthropicClient(opts) })
	r.Register(ProviderLangChain, func(opts Options) (Completer, error) { return NewLangChainClient(opts) })
	return r
}

// Register adds a provider factory to the registry.
func (r *Registry) Register(name string, factory Factory) {
	if _, exists := r.factories[name]; exists {
		r.logger.Warn("provider already registered, overwriting", zap.String("provider", name))
	}
	r.factories[name] = factory
	r.logger.Debug("registered provider", zap.String("provider", name))
}

// New builds the named provider.
func (r *Registry) New(name string, opts Options) (Completer, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("no completion provider registered with name: %s", name)
	}
	c, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
	}
	return c, nil
}

// Names lists the registered providers in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
