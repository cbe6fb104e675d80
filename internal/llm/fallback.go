package llm

import (
	"context"
	"errors"
)

// FallbackProvider tries a secondary provider once when the primary fails.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
}

// WithFallback wraps primary so that a failed request is replayed once on
// secondary. Cancellation and deadline errors are returned as-is. A nil
// secondary returns primary unchanged.
func WithFallback(primary, secondary Provider) Provider {
	if secondary == nil {
		return primary
	}
	return &FallbackProvider{primary: primary, secondary: secondary}
}

func (f *FallbackProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := f.primary.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	resp, ferr := f.secondary.Generate(ctx, req)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return resp, nil
}

// ModelID reports the primary model.
func (f *FallbackProvider) ModelID() string {
	return f.primary.ModelID()
}
