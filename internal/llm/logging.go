package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type purposeKey struct{}

// unlabelled is reported for calls made without WithPurpose.
const unlabelled = "unlabelled"

// WithPurpose labels model calls made with ctx, e.g. "generation" or
// "preview". The label appears in request logs and the retry metric.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return unlabelled
}

// LoggingProvider is a decorator that emits one structured log entry per
// LLM request.
type LoggingProvider struct {
	inner  Provider
	logger *zap.Logger
	now    func() time.Time
}

// WithLogging wraps a Provider with request logging. A nil logger
// disables output.
func WithLogging(p Provider, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, logger: logger, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	model := l.inner.ModelID()
	if resp != nil && resp.Model != "" {
		model = resp.Model
	}

	fields := []zap.Field{
		zap.String("requested_model", l.inner.ModelID()),
		zap.String("model", model),
		zap.String("purpose", purpose),
		zap.Int("prompt_chars", promptChars(req)),
		zap.Int64("latency_ms", l.now().Sub(start).Milliseconds()),
		zap.Bool("success", err == nil),
	}

	if resp != nil {
		fields = append(fields,
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
			zap.String("stop_reason", resp.StopReason),
		)
	}

	if err != nil {
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
		return resp, err
	}
	l.logger.Debug("llm request", fields...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func promptChars(req Request) int {
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	return n
}
