package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// offlineResponse answers every prompt when the mock provider is selected
// from the command line.
const offlineResponse = "This is an offline placeholder response produced without contacting a model provider. " +
	"It exists so that the generation and processing stages can be exercised end to end."

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with fallback, retry and logging middleware.
// Retries are logged to logger; opts can add more retry settings such as
// RetryMetrics.
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger, opts ...RetryOption) (Provider, error) {
	if cfg.Provider == "mock" {
		m := NewMockProvider()
		m.Default = offlineResponse
		return WithLogging(m, logger), nil
	}

	primary, err := newBase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → fallback → retry → logging → base
	retryOpts := append([]RetryOption{RetryLogger(logger)}, opts...)
	p := WithRetry(WithLogging(primary, logger), cfg.Retry, retryOpts...)

	if cfg.FallbackModel == "" {
		return p, nil
	}

	alt := cfg
	alt.SetModel(cfg.FallbackModel)
	secondary, err := newBase(ctx, alt)
	if err != nil {
		return nil, fmt.Errorf("initializing %s fallback provider: %w", cfg.Provider, err)
	}
	return WithFallback(p, WithLogging(secondary, logger)), nil
}

func newBase(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

// NewProviderFromEnv builds a provider from DATAGEN_* variables. When the
// selected provider has no key configured, the standard vendor key
// variables are checked instead.
func NewProviderFromEnv(ctx context.Context, logger *zap.Logger, opts ...RetryOption) (Provider, error) {
	cfg, err := ResolveConfig(ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	return NewProvider(ctx, cfg, logger, opts...)
}

// ResolveConfig returns cfg if it validates, otherwise the first
// discovered vendor key configuration.
func ResolveConfig(cfg Config) (Config, error) {
	err := cfg.Validate()
	if err == nil {
		return cfg, nil
	}
	if discovered, ok := DiscoverConfig(); ok {
		discovered.FallbackModel = cfg.FallbackModel
		return discovered, nil
	}
	return Config{}, err
}
