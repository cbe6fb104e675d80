package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/metrics"
)

// Retry reasons, used as the metric label and in the retry log.
const (
	reasonRateLimit       = "rate_limit"
	reasonUnavailable     = "unavailable"
	reasonInvalidResponse = "invalid_response"
	reasonTransient       = "transient"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter. Every retry is logged and counted.
type RetryProvider struct {
	inner   Provider
	config  RetryConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// RetryOption configures a RetryProvider.
type RetryOption func(*RetryProvider)

// RetryLogger sets the logger that receives one entry per retry.
func RetryLogger(l *zap.Logger) RetryOption {
	return func(r *RetryProvider) {
		if l != nil {
			r.logger = l
		}
	}
}

// RetryMetrics counts retries in m.
func RetryMetrics(m *metrics.Metrics) RetryOption {
	return func(r *RetryProvider) { r.metrics = m }
}

// WithRetry wraps a Provider with retry logic. At least one attempt is
// always made.
func WithRetry(p Provider, cfg RetryConfig, opts ...RetryOption) Provider {
	r := &RetryProvider{inner: p, config: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	purpose := PurposeFrom(ctx)
	invalidSeen := false

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		reason, ok := retryReason(err)
		if !ok {
			return nil, err
		}
		if reason == reasonInvalidResponse {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
		if attempt == attempts {
			break
		}

		wait := r.backoff(attempt, err)
		r.logger.Info("retrying llm request",
			zap.String("model", r.inner.ModelID()),
			zap.String("purpose", purpose),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("wait", wait),
			zap.String("reason", reason),
			zap.Error(err),
		)
		r.metrics.RecordRetry(purpose, reason)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// retryReason classifies err. ok is false for errors that must not be
// retried: cancellation and exhausted token budgets.
func retryReason(err error) (reason string, ok bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", false
	}

	var maxTok *ErrMaxTokensExceeded
	var invalid *ErrInvalidResponse
	var rl *ErrRateLimit
	var unavail *ErrProviderUnavailable
	switch {
	case errors.As(err, &maxTok):
		return "", false
	case errors.As(err, &invalid):
		return reasonInvalidResponse, true
	case errors.As(err, &rl):
		return reasonRateLimit, true
	case errors.As(err, &unavail):
		return reasonUnavailable, true
	default:
		return reasonTransient, true
	}
}

// backoff returns the wait before the retry that follows attempt (1-based).
// A rate limit with RetryAfter wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	wait = min(wait, float64(r.config.MaxWait))

	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
