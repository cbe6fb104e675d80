package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/logging"
	"github.com/abhisek/datagen/internal/metrics"
	"github.com/abhisek/datagen/internal/pipeline"
	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/trace"
)

// domains accepted by --domain.
var domains = []string{"finance", "healthcare", "legal", "tech", "general"}

// processOptions are the flags shared by generate and process.
type processOptions struct {
	Augment     bool
	Factor      int `validate:"gte=0"`
	NoFilter    bool
	MetricsFile string
}

// runStats summarizes one pipeline run.
type runStats struct {
	Input     int
	Processed int
	Augmented int
	Filtered  int
}

// openSink returns the configured trace sink and its closer. Trace
// problems are logged and tracing is disabled rather than failing the run.
func openSink() (trace.Sink, func()) {
	if !appCfg.Trace.Enabled {
		return trace.Nop(), func() {}
	}
	fs, err := trace.NewFileSink(appCfg.Trace.Dir, time.Now())
	if err != nil {
		logger.Warn("tracing disabled", zap.String("dir", appCfg.Trace.Dir), zap.Error(err))
		return trace.Nop(), func() {}
	}
	logger.Debug("tracing to file", zap.String("path", fs.Path()))
	return fs, func() { _ = fs.Close() }
}

// postProcess runs the pipeline and, when requested, augmentation over raw.
func postProcess(raw []*record.Record, opts processOptions, sink trace.Sink, m *metrics.Metrics) ([]*record.Record, runStats, error) {
	stats := runStats{Input: len(raw)}
	filter := appCfg.Processing.FilterInvalid && !opts.NoFilter

	p := pipeline.New(appCfg,
		pipeline.WithSink(sink),
		pipeline.WithLogger(logging.Named(logger, "pipeline")),
		pipeline.WithMetrics(m),
	)

	processed, err := p.ProcessDataset(raw, filter)
	if err != nil {
		return nil, stats, fmt.Errorf("process dataset: %w", err)
	}
	stats.Processed = len(processed)
	stats.Filtered = len(raw) - len(processed)

	if opts.Augment {
		factor := opts.Factor
		if factor == 0 {
			factor = appCfg.Processing.AugmentationFactor
		}
		before := len(processed)
		processed, err = pipeline.NewAugmenter(p).Augment(processed, factor)
		if err != nil {
			return nil, stats, fmt.Errorf("augment dataset: %w", err)
		}
		stats.Augmented = len(processed) - before
	}

	return processed, stats, nil
}

// writeMetrics exports m when a textfile path was given.
func writeMetrics(m *metrics.Metrics, path string) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		logger.Warn("could not write metrics", zap.String("path", path), zap.Error(err))
	}
}

// defaultOutput returns data/generated/<domain>_<YYYYMMDD_HHMMSS>.json.
func defaultOutput(domain string, now time.Time) string {
	return filepath.Join("data", "generated", fmt.Sprintf("%s_%s.json", domain, now.Format("20060102_150405")))
}

// rawPathFor returns the raw dataset path paired with a processed path.
func rawPathFor(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + "_raw.json"
}

// processedPathFor returns the processed path paired with a raw input:
// x_raw.json becomes x.json, anything else gets a _processed suffix.
func processedPathFor(in string) string {
	base := strings.TrimSuffix(in, filepath.Ext(in))
	if trimmed, ok := strings.CutSuffix(base, "_raw"); ok {
		return trimmed + ".json"
	}
	return base + "_processed.json"
}
