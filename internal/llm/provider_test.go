package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "first answer", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "second answer"},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "first answer" {
		t.Fatalf("expected first answer, got %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "second answer" {
		t.Fatalf("expected second answer, got %q", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "hi"},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != unlabelled {
		t.Fatalf("expected %q, got %q", unlabelled, p)
	}

	ctx = WithPurpose(ctx, "generation")
	if p := PurposeFrom(ctx); p != "generation" {
		t.Fatalf("expected 'generation', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMockProvider_DefaultAfterQueue(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "queued"})
	mock.Default = "fallback text"

	first, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text != "queued" {
		t.Fatalf("expected queued, got %q", first.Text)
	}
	for i := 0; i < 2; i++ {
		resp, err := mock.Generate(context.Background(), Request{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Text != "fallback text" {
			t.Fatalf("expected default text, got %q", resp.Text)
		}
	}
}

func TestUserPrompt(t *testing.T) {
	req := UserPrompt("Explain bonds.", 512, 0.7)
	if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser || req.Messages[0].Content != "Explain bonds." {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	if req.MaxTokens != 512 || req.Temperature != 0.7 {
		t.Fatalf("unexpected limits: %+v", req)
	}
}

func TestUsage_Add(t *testing.T) {
	got := Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}.Add(Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30})
	want := Usage{InputTokens: 11, OutputTokens: 22, TotalTokens: 33}
	if got != want {
		t.Fatalf("Add() = %+v, want %+v", got, want)
	}
}

func TestFinish(t *testing.T) {
	if _, err := finish("   ", Usage{}, "m", "end"); err == nil {
		t.Fatal("expected error for blank text")
	} else {
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Fatalf("expected ErrInvalidResponse, got %T", err)
		}
	}

	_, err := finish("", Usage{}, "m", "max_tokens")
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T", err)
	}

	resp, err := finish("  partial answer", Usage{OutputTokens: 4}, "m", "max_tokens")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "  partial answer" || resp.StopReason != "max_tokens" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestConfig_SetModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetModel("claude-sonnet")
	if cfg.Anthropic.Model != "claude-sonnet" {
		t.Fatalf("expected anthropic model override, got %q", cfg.Anthropic.Model)
	}
	cfg.SetModel("")
	if cfg.Anthropic.Model != "claude-sonnet" {
		t.Fatalf("empty model should not override, got %q", cfg.Anthropic.Model)
	}

	cfg.Provider = "openrouter"
	cfg.SetModel("meta-llama/llama-3-8b")
	if cfg.OpenRouter.Model != "meta-llama/llama-3-8b" {
		t.Fatalf("expected openrouter model override, got %q", cfg.OpenRouter.Model)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DATAGEN_LLM_PROVIDER", "openai")
	t.Setenv("DATAGEN_OPENAI_API_KEY", "sk-env")
	t.Setenv("DATAGEN_OPENAI_MODEL", "gpt-4o")
	t.Setenv("DATAGEN_FALLBACK_MODEL", "gpt-4o-mini")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.OpenAI.APIKey != "sk-env" || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("unexpected openai config: %+v", cfg.OpenAI)
	}
	if cfg.FallbackModel != "gpt-4o-mini" {
		t.Fatalf("fallback = %q", cfg.FallbackModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
}

func TestEstimateCost(t *testing.T) {
	cost, ok := EstimateCost("gpt-4o-mini", Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000})
	if !ok {
		t.Fatal("expected gpt-4o-mini to be priced")
	}
	if cost < 0.749 || cost > 0.751 {
		t.Fatalf("cost = %v, want 0.75", cost)
	}
	if _, ok := EstimateCost("mock", Usage{InputTokens: 10}); ok {
		t.Fatal("mock should not be priced")
	}
}
