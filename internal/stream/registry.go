package stream

import "fmt"

// ProviderFactory builds a provider from its own configuration.
type ProviderFactory func() (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// Register adds a factory under the given name, replacing any previous one.
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.factories[name] = factory
}

// New builds the named provider.
func (r *Registry) New(name string) (Provider, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported stream provider: %s", name)
	}
	return factory()
}
