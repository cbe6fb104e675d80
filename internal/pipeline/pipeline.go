package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/config"
	"github.com/abhisek/datagen/internal/metrics"
	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/trace"
)

// progressEvery is how many records pass between progress log lines.
const progressEvery = 100

// Pipeline runs a fixed sequence of stages over records.
type Pipeline struct {
	stages  []Stage
	sink    trace.Sink
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStages replaces the default stage sequence.
func WithStages(stages ...Stage) Option {
	return func(p *Pipeline) { p.stages = stages }
}

// WithSink reports every completed step to sink.
func WithSink(sink trace.Sink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithLogger sets the progress logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records stage timings and counts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock sets the time source used for trace steps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds the standard pipeline: clean, validate, score, tag.
func New(cfg config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		sink:   trace.Nop(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.stages == nil {
		p.stages = []Stage{
			NewCleaner(p.now),
			NewContentValidator(cfg, p.now),
			NewQualityScorer(p.now),
			NewEntityTagger(p.now),
		}
	}
	return p
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// ProcessItem runs every stage on rec in order and returns the result.
// rec itself is left untouched.
func (p *Pipeline) ProcessItem(rec *record.Record) (*record.Record, error) {
	if err := rec.Check(); err != nil {
		return nil, err
	}

	out := rec.Clone()
	for _, st := range p.stages {
		start := time.Now()
		next, err := st.Apply(out)
		p.metrics.ObserveStage(st.Name(), time.Since(start))
		if err != nil {
			p.metrics.RecordStageError(st.Name())
			return nil, fmt.Errorf("stage %s: %w", st.Name(), err)
		}
		p.report(st.Name(), next)
		out = next
	}

	score, _ := out.Metadata.Score()
	issues := 0
	if out.Metadata.Validation != nil {
		issues = len(out.Metadata.Validation.Issues)
	}
	p.metrics.RecordProcessed(score, issues)
	return out, nil
}

// report forwards the step a stage just appended to the trace sink.
func (p *Pipeline) report(stage string, rec *record.Record) {
	if len(rec.Trace.Steps) == 0 {
		p.sink.Record(stage, rec.ID, nil)
		return
	}
	step := lastStep(rec)
	p.sink.Record(step.Name, rec.ID, step.Params)
}

// ProcessDataset processes each record in order. When filterInvalid is
// set, records that fail validation are dropped. A stage error aborts the
// run; the input slice and its records are never modified.
func (p *Pipeline) ProcessDataset(recs []*record.Record, filterInvalid bool) ([]*record.Record, error) {
	p.logger.Info("processing dataset", zap.Int("items", len(recs)))

	out := make([]*record.Record, 0, len(recs))
	for i, rec := range recs {
		if i > 0 && i%progressEvery == 0 {
			p.logger.Info("processing progress", zap.Int("done", i), zap.Int("total", len(recs)))
		}

		processed, err := p.ProcessItem(rec)
		if err != nil {
			return nil, fmt.Errorf("process item %d: %w", i, err)
		}

		if filterInvalid && !processed.Metadata.IsValid() {
			p.metrics.RecordFiltered()
			p.logger.Debug("dropping invalid record",
				zap.String("id", processed.ID),
				zap.Strings("issues", processed.Metadata.Validation.Issues),
			)
			continue
		}
		out = append(out, processed)
	}

	p.logger.Info("processing complete", zap.Int("retained", len(out)), zap.Int("total", len(recs)))
	return out, nil
}
