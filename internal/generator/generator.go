// Package generator fills templates, asks a model to answer them and
// wraps each answer in a raw record.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/config"
	"github.com/abhisek/datagen/internal/llm"
	"github.com/abhisek/datagen/internal/metrics"
	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/templates"
	"github.com/abhisek/datagen/internal/trace"
)

const (
	// Method is stored as metadata.generation_method.
	Method = "template_based"

	// Version is stored as metadata.generator_version.
	Version = "1.0"

	// StepInitial is the first trace step of every generated record.
	StepInitial = "initial_generation"

	// Purpose labels model calls in the request log.
	Purpose = "generation"

	// ErrorMarker prefixes the response stored when the model call failed.
	ErrorMarker = "Error generating response: "

	progressEvery = 10
)

// Generator produces raw records for a domain.
type Generator struct {
	store    *templates.Store
	filler   *templates.Filler
	provider llm.Provider

	model       string
	maxTokens   int
	temperature float64

	sink    trace.Sink
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string

	usage    llm.Usage
	failures int
}

// Option configures a Generator.
type Option func(*Generator)

// WithGenerationConfig applies the model label and sampling settings.
func WithGenerationConfig(cfg config.GenerationConfig) Option {
	return func(g *Generator) {
		if cfg.ModelName != "" {
			g.model = cfg.ModelName
		}
		g.maxTokens = cfg.MaxTokens
		g.temperature = cfg.Temperature
	}
}

// WithModel overrides the label stored in metadata.model_used.
func WithModel(name string) Option {
	return func(g *Generator) { g.model = name }
}

// WithSink reports each generated record to sink.
func WithSink(sink trace.Sink) Option {
	return func(g *Generator) {
		if sink != nil {
			g.sink = sink
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics counts generated records and failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithClock sets the time source for created_at and trace steps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDGenerator sets the record identifier source.
func WithIDGenerator(f func() string) Option {
	return func(g *Generator) { g.newID = f }
}

// New returns a Generator. The model label defaults to the provider's
// model ID.
func New(store *templates.Store, filler *templates.Filler, provider llm.Provider, opts ...Option) *Generator {
	defaults := config.Default().Generation
	g := &Generator{
		store:       store,
		filler:      filler,
		provider:    provider,
		model:       provider.ModelID(),
		maxTokens:   defaults.MaxTokens,
		temperature: defaults.Temperature,
		sink:        trace.Nop(),
		logger:      zap.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// CreateRecord fills a template for domain, asks the provider to answer
// it and returns the raw record. A failed model call does not fail the
// record: its error text becomes the response. Only ErrNoTemplates and
// context cancellation are returned as errors.
func (g *Generator) CreateRecord(ctx context.Context, domain string) (*record.Record, error) {
	prompt, err := g.filler.FillDomain(g.store, domain)
	if err != nil {
		return nil, err
	}

	response, err := g.respond(ctx, prompt.Text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.failures++
		g.metrics.RecordGenerationError(domain)
		g.logger.Warn("generation failed; storing error marker",
			zap.String("domain", domain),
			zap.Int("template_id", prompt.TemplateID),
			zap.Error(err),
		)
		response = ErrorMarker + err.Error()
	}

	now := g.now()
	rec := record.New(domain, prompt.Text, response, now)
	rec.ID = g.newID()

	templateID := prompt.TemplateID
	rec.Metadata.GenerationMethod = Method
	rec.Metadata.GeneratorVersion = Version
	rec.Metadata.ModelUsed = g.model
	rec.Metadata.TemplateID = &templateID
	rec.Metadata.Parameters = prompt.Parameters
	rec.AddStep(StepInitial, now, nil)

	g.metrics.RecordGenerated(domain)
	g.sink.Record(StepInitial, rec.ID, map[string]any{
		"domain":      domain,
		"template_id": templateID,
	})
	return rec, nil
}

func (g *Generator) respond(ctx context.Context, prompt string) (string, error) {
	ctx = llm.WithPurpose(ctx, Purpose)
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(prompt, g.maxTokens, g.temperature))
	if err != nil {
		return "", err
	}
	g.usage = g.usage.Add(resp.Usage)
	g.metrics.RecordTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return resp.Text, nil
}

// GenerateDataset creates size records for domain. It returns
// ErrNoTemplates when the domain has no templates. On cancellation the
// records generated so far are returned with the context error.
func (g *Generator) GenerateDataset(ctx context.Context, domain string, size int) ([]*record.Record, error) {
	g.logger.Info("generating dataset", zap.String("domain", domain), zap.Int("size", size))

	if len(g.store.ForDomain(domain)) == 0 {
		g.logger.Warn("no templates for domain", zap.String("domain", domain))
		return []*record.Record{}, fmt.Errorf("%w %q", templates.ErrNoTemplates, domain)
	}

	out := make([]*record.Record, 0, size)
	for i := range size {
		if i%progressEvery == 0 {
			g.logger.Info("generation progress", zap.Int("done", i), zap.Int("total", size))
		}

		rec, err := g.CreateRecord(ctx, domain)
		if err != nil {
			if errors.Is(err, templates.ErrNoTemplates) {
				continue
			}
			return out, err
		}
		out = append(out, rec)
	}

	g.logger.Info("generation complete",
		zap.Int("records", len(out)),
		zap.Int("failures", g.failures),
		zap.Int("input_tokens", g.usage.InputTokens),
		zap.Int("output_tokens", g.usage.OutputTokens),
	)
	return out, nil
}

// Usage returns the token usage accumulated across all calls.
func (g *Generator) Usage() llm.Usage {
	return g.usage
}

// Failures returns how many model calls were replaced by error markers.
func (g *Generator) Failures() int {
	return g.failures
}

// Model returns the label written to metadata.model_used.
func (g *Generator) Model() string {
	return g.model
}
