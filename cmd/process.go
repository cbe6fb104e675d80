package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/config"
	"github.com/abhisek/datagen/internal/metrics"
	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/ui/theme"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run an existing dataset through the processing pipeline",
	Long: `Read a dataset written by generate (or any JSON array of records) and apply
cleaning, validation, quality scoring and entity tagging, optionally followed
by augmentation. No model calls are made.`,
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.String("input", "", "Dataset to process (required)")
	f.String("output", "", "Processed dataset path (default derived from --input)")
	f.Bool("augment", false, "Add synonym-replacement variants")
	f.Int("factor", 0, "Augmentation factor (default from config)")
	f.Bool("no-filter", false, "Keep records that fail validation")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	_ = processCmd.MarkFlagRequired("input")
}

func runProcess(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	input, _ := f.GetString("input")
	out, _ := f.GetString("output")
	var o processOptions
	o.Augment, _ = f.GetBool("augment")
	o.Factor, _ = f.GetInt("factor")
	o.NoFilter, _ = f.GetBool("no-filter")
	o.MetricsFile, _ = f.GetString("metrics-file")
	if err := config.Struct(o); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if out == "" {
		out = processedPathFor(input)
	}

	raw, err := record.ReadFile(input)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", zap.String("path", input), zap.Int("records", len(raw)))

	m := metrics.New()
	sink, closeSink := openSink()
	defer closeSink()

	processed, run, err := postProcess(raw, o, sink, m)
	if err != nil {
		return err
	}
	if err := record.WriteFile(out, processed); err != nil {
		return fmt.Errorf("write processed dataset: %w", err)
	}
	logger.Info("processed dataset written", zap.String("path", out), zap.Int("records", len(processed)))
	writeMetrics(m, o.MetricsFile)

	printRunSummary(cmd.OutOrStdout(), "Processed "+input, run, processed,
		theme.Row("Output", out))
	return nil
}
