package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/datagen/internal/config"
	"github.com/abhisek/datagen/internal/generator"
	"github.com/abhisek/datagen/internal/record"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("datagen %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestOutputPaths(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("data", "generated", "legal_20250304_050607.json"), defaultOutput("legal", now))
	assert.Equal(t, "out/fin_raw.json", rawPathFor("out/fin.json"))
	assert.Equal(t, "out/fin.json", processedPathFor("out/fin_raw.json"))
	assert.Equal(t, "out/other_processed.json", processedPathFor("out/other.json"))
}

func TestGenerateOptions_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    generateOptions
		wantErr bool
	}{
		{"valid", generateOptions{Domain: "finance", Size: 1}, false},
		{"unknown domain", generateOptions{Domain: "sports", Size: 1}, true},
		{"zero size", generateOptions{Domain: "tech", Size: 0}, true},
		{"unknown provider", generateOptions{Domain: "tech", Size: 1, Provider: "local"}, true},
		{"negative factor", generateOptions{Domain: "tech", Size: 1, processOptions: processOptions{Factor: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.Struct(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateProcessStats_Mock(t *testing.T) {
	t.Chdir(t.TempDir())

	out := filepath.Join("data", "fin.json")
	summary := execute(t, "generate", "--provider", "mock", "--domain", "finance",
		"--size", "4", "--seed", "7", "--output", out, "--augment", "--factor", "2",
		"--metrics-file", "metrics.prom")
	assert.Contains(t, summary, "Generated finance dataset")

	raw, err := record.ReadFile(filepath.Join("data", "fin_raw.json"))
	require.NoError(t, err)
	require.Len(t, raw, 4)
	for _, r := range raw {
		assert.Equal(t, []string{"initial_generation"}, r.StepNames())
		assert.Equal(t, "mock", r.Metadata.ModelUsed)
	}

	processed, err := record.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, processed, 8)
	assert.Equal(t,
		[]string{"initial_generation", "clean_text", "validate_content", "add_quality_score", "tag_entities"},
		processed[0].StepNames())
	assert.True(t, processed[4].Metadata.Augmented)

	prom, err := os.ReadFile("metrics.prom")
	require.NoError(t, err)
	assert.Contains(t, string(prom), `datagen_records_generated_total{domain="finance"} 4`)

	traces, err := filepath.Glob(filepath.Join("logs", "traces", "*"))
	require.NoError(t, err)
	assert.NotEmpty(t, traces)

	execute(t, "process", "--input", filepath.Join("data", "fin_raw.json"), "--output", "again.json")
	again, err := record.ReadFile("again.json")
	require.NoError(t, err)
	assert.Len(t, again, 4)

	stats := execute(t, "stats", "again.json")
	assert.Contains(t, stats, "Records")
}

func TestProviderConfig_ModelPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		flag      string
		env       string
		config    string
		wantModel string
	}{
		{"provider default", "", "", "", "gpt-4o-mini"},
		{"config model", "", "", "gpt-4o", "gpt-4o"},
		{"env beats config", "", "gpt-4.1", "gpt-4o", "gpt-4.1"},
		{"flag beats env", "o3-mini", "gpt-4.1", "gpt-4o", "o3-mini"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATAGEN_OPENAI_API_KEY", "sk-test")
			t.Setenv("DATAGEN_OPENAI_MODEL", tt.env)
			appCfg = config.Default()
			appCfg.Generation.ModelName = tt.config

			cfg, err := providerConfig(generateOptions{Provider: "openai", Model: tt.flag})
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, cfg.OpenAI.Model)
		})
	}
}

func TestDescribe(t *testing.T) {
	ok := record.New("finance", "q", "A diversified portfolio holds $5,000 in bonds.", time.Now())
	score := 0.8
	ok.Metadata.QualityScore = &score
	ok.Metadata.Validation = &record.Validation{IsValid: true, Issues: []string{}}
	ok.Metadata.Entities = map[string][]string{"monetary_value": {"$5,000"}, "percentage": {"5%", "7%"}}

	failed := record.New("", "q", generator.ErrorMarker+"provider down", time.Now())
	low := 0.2
	failed.Metadata.QualityScore = &low
	failed.Metadata.Validation = &record.Validation{IsValid: false, Issues: []string{"Response too short (34 chars, minimum 50)"}}

	s := describe([]*record.Record{ok, failed}, 0.6)
	assert.Equal(t, 2, s.Records)
	assert.Equal(t, 1, s.Valid)
	assert.Equal(t, 1, s.ErrorMarked)
	assert.Equal(t, 1, s.AboveMin)
	assert.InDelta(t, 0.5, s.MeanScore, 1e-9)
	assert.Equal(t, map[string]int{"finance": 1, "general": 1}, s.Domains)
	assert.Equal(t, map[string]int{"monetary_value": 1, "percentage": 2}, s.Entities)

	rows := datasetRows(s, 0.6)
	joined := strings.Join(rows, "\n")
	assert.Less(t, strings.Index(joined, "Domain finance"), strings.Index(joined, "Domain general"))
	assert.Less(t, strings.Index(joined, "Entities monetary_value"), strings.Index(joined, "Entities percentage"))
}
