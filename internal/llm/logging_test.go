package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging_RecordsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Text: "answer", Usage: Usage{InputTokens: 7, OutputTokens: 3}})
	p := WithLogging(mock, zap.New(core))

	ctx := WithPurpose(context.Background(), "generation")
	_, err := p.Generate(ctx, UserPrompt("question", 64, 0))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "generation", fields["purpose"])
	assert.Equal(t, "mock", fields["model"])
	assert.Equal(t, int64(7), fields["input_tokens"])
	assert.Equal(t, true, fields["success"])
}

func TestLogging_RecordsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)

	entries := logs.FilterMessage("llm request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, false, entries[0].ContextMap()["success"])
	assert.Equal(t, "unlabelled", entries[0].ContextMap()["purpose"])
}

func TestLogging_NilLogger(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), nil)
	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, zap.NewNop())
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), UserPrompt("anything", 10, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)
	assert.Equal(t, "mock", p.ModelID())
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil)
	require.Error(t, err)
}

func TestNewProvider_WithFallbackModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openai"
	cfg.OpenAI.APIKey = "sk-test"
	cfg.FallbackModel = "gpt-4o"

	p, err := NewProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	_, ok := p.(*FallbackProvider)
	assert.True(t, ok, "expected fallback wrapper, got %T", p)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
}

func TestResolveConfig_Discovers(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, err := ResolveConfig(Config{Provider: "anthropic"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)
}

func TestResolveConfig_NothingConfigured(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	_, err := ResolveConfig(Config{Provider: "openai"})
	require.Error(t, err)
}
