package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/config"
	"github.com/abhisek/datagen/internal/generator"
	"github.com/abhisek/datagen/internal/llm"
	"github.com/abhisek/datagen/internal/logging"
	"github.com/abhisek/datagen/internal/metrics"
	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/templates"
	"github.com/abhisek/datagen/internal/ui/theme"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic dataset for a domain",
	Long: `Fill domain templates, ask the configured model for each prompt and run the
answers through the processing pipeline.

Two files are written: <output>_raw.json with the untouched generations and
<output> with the processed (and optionally augmented) records.

The provider is picked from DATAGEN_LLM_PROVIDER or from whichever API key is
set. Use --provider mock to run without network access.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("domain", "finance", "Domain to generate for: "+strings.Join(domains, ", "))
	f.Int("size", 100, "Number of records to generate")
	f.String("provider", "", "LLM provider: anthropic, openai, gemini, openrouter or mock")
	f.String("model", "", "Model override for the selected provider")
	f.String("output", "", "Processed dataset path (default data/generated/<domain>_<timestamp>.json)")
	f.String("templates", "", "Template file (default from config)")
	f.Uint64("seed", 0, "Seed for template filling (0 picks one from the clock)")
	f.Bool("augment", false, "Add synonym-replacement variants")
	f.Int("factor", 0, "Augmentation factor (default from config)")
	f.Bool("no-filter", false, "Keep records that fail validation")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile")
}

type generateOptions struct {
	Domain    string `validate:"oneof=finance healthcare legal tech general"`
	Size      int    `validate:"gt=0"`
	Provider  string `validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`
	Model     string
	Output    string
	Templates string
	Seed      uint64
	processOptions
}

func generateOptionsFrom(cmd *cobra.Command) (generateOptions, error) {
	f := cmd.Flags()
	var o generateOptions
	o.Domain, _ = f.GetString("domain")
	o.Size, _ = f.GetInt("size")
	o.Provider, _ = f.GetString("provider")
	o.Model, _ = f.GetString("model")
	o.Output, _ = f.GetString("output")
	o.Templates, _ = f.GetString("templates")
	o.Seed, _ = f.GetUint64("seed")
	o.Augment, _ = f.GetBool("augment")
	o.Factor, _ = f.GetInt("factor")
	o.NoFilter, _ = f.GetBool("no-filter")
	o.MetricsFile, _ = f.GetString("metrics-file")

	o.Domain = strings.ToLower(o.Domain)
	o.Provider = strings.ToLower(o.Provider)
	if err := config.Struct(o); err != nil {
		return o, fmt.Errorf("invalid flags: %w", err)
	}
	return o, nil
}

// providerConfig builds the LLM config from the environment and flags.
// An explicit --provider is validated as given; otherwise a missing
// provider is discovered from the available API keys. The model comes from
// --model, then DATAGEN_<PROVIDER>_MODEL, then data_generation.model_name.
func providerConfig(o generateOptions) (llm.Config, error) {
	cfg := llm.ConfigFromEnv()
	if o.Provider != "" {
		cfg.Provider = o.Provider
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	} else {
		var err error
		if cfg, err = llm.ResolveConfig(cfg); err != nil {
			return cfg, err
		}
	}
	model := o.Model
	if model == "" && cfg.EnvModel() == "" {
		model = appCfg.Generation.ModelName
	}
	cfg.SetModel(model)
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	o, err := generateOptionsFrom(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	llmCfg, err := providerConfig(o)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	provider, err := llm.NewProvider(ctx, llmCfg, logging.Named(logger, "llm"), llm.RetryMetrics(m))
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	templatePath := o.Templates
	if templatePath == "" {
		templatePath = appCfg.Generation.TemplatePath
	}
	store := templates.Load(templatePath, logging.Named(logger, "templates"))

	seed := o.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Debug("template seed", zap.Uint64("seed", seed))

	sink, closeSink := openSink()
	defer closeSink()

	gen := generator.New(store, templates.NewSeededFiller(seed), provider,
		generator.WithGenerationConfig(appCfg.Generation),
		generator.WithModel(provider.ModelID()),
		generator.WithSink(sink),
		generator.WithLogger(logging.Named(logger, "generator")),
		generator.WithMetrics(m),
	)

	started := time.Now()
	out := o.Output
	if out == "" {
		out = defaultOutput(o.Domain, started)
	}
	rawPath := rawPathFor(out)

	raw, genErr := gen.GenerateDataset(ctx, o.Domain, o.Size)
	if genErr != nil && !errors.Is(genErr, context.Canceled) {
		return fmt.Errorf("generate dataset: %w", genErr)
	}
	if err := record.WriteFile(rawPath, raw); err != nil {
		return fmt.Errorf("write raw dataset: %w", err)
	}
	logger.Info("raw dataset written", zap.String("path", rawPath), zap.Int("records", len(raw)))
	if genErr != nil {
		writeMetrics(m, o.MetricsFile)
		return fmt.Errorf("generation interrupted after %d records: %w", len(raw), genErr)
	}

	processed, run, err := postProcess(raw, o.processOptions, sink, m)
	if err != nil {
		return err
	}
	if err := record.WriteFile(out, processed); err != nil {
		return fmt.Errorf("write processed dataset: %w", err)
	}
	logger.Info("processed dataset written", zap.String("path", out), zap.Int("records", len(processed)))
	writeMetrics(m, o.MetricsFile)

	extra := usageRows(gen.Model(), gen.Usage(), gen.Failures())
	extra = append(extra,
		theme.Row("Elapsed", time.Since(started).Round(time.Millisecond).String()),
		theme.Row("Raw output", rawPath),
		theme.Row("Processed output", out),
	)
	printRunSummary(cmd.OutOrStdout(), "Generated "+o.Domain+" dataset", run, processed, extra...)
	return nil
}
