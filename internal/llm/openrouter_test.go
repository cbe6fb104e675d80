package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterProvider_Config(t *testing.T) {
	tests := []struct {
		name      string
		cfg       OpenRouterConfig
		wantModel string
		wantErr   bool
	}{
		{"vendor model passed through", OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"}, "anthropic/claude-3-haiku", false},
		{"friendly openai name not mapped", OpenRouterConfig{APIKey: "sk-or", Model: "gpt-4o"}, "gpt-4o", false},
		{"missing key", OpenRouterConfig{Model: "meta-llama/llama-3-8b"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, p.ModelID())
		})
	}
}

func TestOpenRouterProvider_SendsToBaseURL(t *testing.T) {
	var gotPath, gotAuth, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "gen-1",
			"model": body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "Index funds track a market benchmark."},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 8},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "meta-llama/llama-3-8b",
		BaseURL: server.URL + "/api/v1",
	})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), UserPrompt("What is an index fund?", 128, 0.7))
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-or-test", gotAuth)
	assert.Equal(t, "meta-llama/llama-3-8b", gotModel)
	assert.Equal(t, "Index funds track a market benchmark.", resp.Text)
	assert.Equal(t, 12, resp.Usage.InputTokens)
}

func TestNewProvider_OpenRouterModelOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openrouter"
	cfg.OpenRouter.APIKey = "sk-or-test"
	cfg.SetModel("mistralai/mistral-7b-instruct")

	p, err := NewProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "mistralai/mistral-7b-instruct", p.ModelID())
}
