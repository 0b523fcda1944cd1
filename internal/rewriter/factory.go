package rewriter

import (
	"fmt"

	"resumetailor/internal/config"
	"resumetailor/internal/port"
)

// ProviderFactory is a function that creates a RewriteGenerator from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.RewriteGenerator, error)

// registry of generator provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a generator provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGenerator creates a RewriteGenerator from a provider config using the registered factory.
func NewGenerator(cfg *config.GeneratorProviderConfig) (port.RewriteGenerator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the configured provider chain. A single provider is
// returned as-is; several are wrapped in a FallbackGenerator.
func NewFromConfig(cfg *config.GeneratorConfig) (port.RewriteGenerator, error) {
	chain := cfg.Chain()
	generators := make([]port.RewriteGenerator, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, p := range chain {
		g, err := NewGenerator(p)
		if err != nil {
			return nil, err
		}
		generators = append(generators, g)
		names = append(names, p.Provider)
	}
	if len(generators) == 1 {
		return generators[0], nil
	}
	return NewFallbackGenerator(generators, names), nil
}
