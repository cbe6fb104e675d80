// Package metrics collects generation and pipeline counters in a private
// Prometheus registry that can be exported as a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	reg *prometheus.Registry

	recordsGenerated *prometheus.CounterVec
	generationErrors *prometheus.CounterVec
	tokensUsed       *prometheus.CounterVec
	llmRetries       *prometheus.CounterVec

	recordsProcessed prometheus.Counter
	recordsFiltered  prometheus.Counter
	recordsAugmented prometheus.Counter
	validationIssues prometheus.Counter

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	qualityScore  prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		recordsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "datagen_records_generated_total",
			Help: "Raw records produced by the generator",
		}, []string{"domain"}),
		generationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "datagen_generation_errors_total",
			Help: "Model calls that failed and were replaced by an error marker",
		}, []string{"domain"}),
		tokensUsed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "datagen_llm_tokens_total",
			Help: "Tokens consumed by model calls",
		}, []string{"direction"}),
		llmRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "datagen_llm_retries_total",
			Help: "Model calls retried after a transient error",
		}, []string{"purpose", "reason"}),
		recordsProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "datagen_records_processed_total",
			Help: "Records run through the processing pipeline",
		}),
		recordsFiltered: f.NewCounter(prometheus.CounterOpts{
			Name: "datagen_records_filtered_total",
			Help: "Records dropped by the invalid-item filter",
		}),
		recordsAugmented: f.NewCounter(prometheus.CounterOpts{
			Name: "datagen_records_augmented_total",
			Help: "Variants created by augmentation",
		}),
		validationIssues: f.NewCounter(prometheus.CounterOpts{
			Name: "datagen_validation_issues_total",
			Help: "Validation issues raised across all records",
		}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datagen_stage_duration_seconds",
			Help:    "Per-stage processing latency",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "datagen_stage_errors_total",
			Help: "Unexpected stage failures",
		}, []string{"stage"}),
		qualityScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "datagen_quality_score",
			Help:    "Distribution of heuristic quality scores",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// RecordGenerated counts one raw record for domain.
func (m *Metrics) RecordGenerated(domain string) {
	if m == nil {
		return
	}
	m.recordsGenerated.WithLabelValues(domain).Inc()
}

// RecordGenerationError counts a failed model call for domain.
func (m *Metrics) RecordGenerationError(domain string) {
	if m == nil {
		return
	}
	m.generationErrors.WithLabelValues(domain).Inc()
}

// RecordTokens adds model token usage.
func (m *Metrics) RecordTokens(input, output int) {
	if m == nil {
		return
	}
	m.tokensUsed.WithLabelValues("input").Add(float64(input))
	m.tokensUsed.WithLabelValues("output").Add(float64(output))
}

// RecordRetry counts one retried model call. reason names the error class
// that triggered it.
func (m *Metrics) RecordRetry(purpose, reason string) {
	if m == nil {
		return
	}
	m.llmRetries.WithLabelValues(purpose, reason).Inc()
}

// ObserveStage records how long one stage took on one record.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordStageError counts an unexpected stage failure.
func (m *Metrics) RecordStageError(stage string) {
	if m == nil {
		return
	}
	m.stageErrors.WithLabelValues(stage).Inc()
}

// RecordProcessed counts one processed record with its score and number
// of validation issues.
func (m *Metrics) RecordProcessed(score float64, issues int) {
	if m == nil {
		return
	}
	m.recordsProcessed.Inc()
	m.qualityScore.Observe(score)
	m.validationIssues.Add(float64(issues))
}

// RecordFiltered counts one record dropped by the invalid filter.
func (m *Metrics) RecordFiltered() {
	if m == nil {
		return
	}
	m.recordsFiltered.Inc()
}

// RecordAugmented counts n augmented variants.
func (m *Metrics) RecordAugmented(n int) {
	if m == nil {
		return
	}
	m.recordsAugmented.Add(float64(n))
}

// WriteTextfile writes the registry in the text exposition format. The
// file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
