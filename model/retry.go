package model

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
)

// RetryProvider decorates a core.ModelProvider with exponential backoff for
// transient failures. Context cancellation aborts the retry loop between
// attempts.
type RetryProvider struct {
	inner  core.ModelProvider
	opts   RetryOptions
	logger logging.Logger
}

// RetryOptions configures a RetryProvider.
type RetryOptions struct {
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// MaxElapsedTime caps the total time spent retrying. Zero retries
	// until the context is cancelled.
	MaxElapsedTime time.Duration
	// MaxRetries caps the number of retry attempts after the first call.
	MaxRetries uint64
	Logger     logging.Logger
}

// NewRetryProvider wraps inner with retry behavior.
func NewRetryProvider(inner core.ModelProvider, optFns ...func(o *RetryOptions)) *RetryProvider {
	opts := RetryOptions{
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  30 * time.Second,
		MaxRetries:      3,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RetryProvider{inner: inner, opts: opts, logger: opts.Logger}
}

// GenerateResponse implements core.ModelProvider, retrying the inner provider
// until it succeeds, the retry budget is exhausted or the context is done.
func (p *RetryProvider) GenerateResponse(ctx context.Context, prompt string, history []core.Message) (*core.ModelResponse, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.opts.InitialInterval
	bo.MaxElapsedTime = p.opts.MaxElapsedTime

	var policy backoff.BackOff = bo
	if p.opts.MaxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, p.opts.MaxRetries)
	}
	policy = backoff.WithContext(policy, ctx)

	var resp *core.ModelResponse
	attempt := 0

	operation := func() error {
		attempt++
		r, err := p.inner.GenerateResponse(ctx, prompt, history)
		if err != nil {
			p.logger.Warn("model.retry.attempt_failed", "attempt", attempt, "error", err.Error())
			return err
		}
		resp = r
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

var _ core.ModelProvider = (*RetryProvider)(nil)
