package rewriter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumetailor/internal/config"
	"resumetailor/internal/port"
	"resumetailor/internal/rewriter"
)

// stubGenerator is a minimal RewriteGenerator for testing the factory.
type stubGenerator struct {
	model string
}

func (s *stubGenerator) Generate(_ context.Context, _ port.GenerateInput) (*port.GenerateOutput, error) {
	return &port.GenerateOutput{ModelUsed: s.model}, nil
}

func registerStub(name string) {
	rewriter.RegisterProvider(name, func(cfg *config.GeneratorProviderConfig) (port.RewriteGenerator, error) {
		return &stubGenerator{model: cfg.DefaultModel}, nil
	})
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	registerStub("test-provider")

	g, err := rewriter.NewGenerator(&config.GeneratorProviderConfig{
		Provider:     "test-provider",
		DefaultModel: "test-model",
	})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), port.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, "test-model", out.ModelUsed)
}

func TestFactory_UnknownProvider(t *testing.T) {
	g, err := rewriter.NewGenerator(&config.GeneratorProviderConfig{
		Provider: "nonexistent-provider-xyz",
	})

	assert.Nil(t, g)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator provider")
}

func TestNewFromConfig_SingleProvider(t *testing.T) {
	registerStub("single-stub")

	g, err := rewriter.NewFromConfig(&config.GeneratorConfig{Provider: "single-stub", DefaultModel: "m1"})
	require.NoError(t, err)

	_, isFallback := g.(*rewriter.FallbackGenerator)
	assert.False(t, isFallback)
}

func TestNewFromConfig_ChainBuildsFallback(t *testing.T) {
	registerStub("chain-a")
	registerStub("chain-b")

	g, err := rewriter.NewFromConfig(&config.GeneratorConfig{
		Primary:   config.GeneratorProviderConfig{Provider: "chain-a", DefaultModel: "first"},
		Secondary: config.GeneratorProviderConfig{Provider: "chain-b", DefaultModel: "second"},
	})
	require.NoError(t, err)

	_, isFallback := g.(*rewriter.FallbackGenerator)
	assert.True(t, isFallback)

	out, err := g.Generate(context.Background(), port.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, "first", out.ModelUsed)
}

func TestNewFromConfig_UnknownSecondary(t *testing.T) {
	registerStub("chain-ok")

	_, err := rewriter.NewFromConfig(&config.GeneratorConfig{
		Primary:   config.GeneratorProviderConfig{Provider: "chain-ok"},
		Secondary: config.GeneratorProviderConfig{Provider: "missing"},
	})
	assert.Error(t, err)
}
