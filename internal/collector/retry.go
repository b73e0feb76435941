package collector

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"netmigration/widcollector/logger"
	"netmigration/widcollector/pkg/errors"
)

// RetryPolicy bounds how transient failures are retried
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// AttemptTimeout caps a single attempt; zero leaves attempts unbounded
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy is three attempts waiting 2s then 4s, capped at 10s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 2 * time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
	}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	return b
}

// Retry runs op until it succeeds, returns a non-retryable error, or the
// policy runs out of attempts. The last error is returned unchanged.
func Retry[T any](ctx context.Context, source string, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	log := logger.ForCollector(source)
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	v, err := backoff.Retry(ctx, func() (T, error) {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
		}
		defer cancel()

		v, err := op(attemptCtx)
		if err == nil {
			return v, nil
		}

		// The attempt ran out of time while the caller is still waiting.
		if ctx.Err() == nil && stderrors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.IsRetryable(err) {
			err = errors.NewTimeout(source, "attempt timed out", err)
		}
		if !errors.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn().Err(err).Dur("wait", wait).Msg("Transient failure, retrying")
		}),
	)

	// backoff stops on MaxTries before it unwraps a permanent error
	var permanent *backoff.PermanentError
	if stderrors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return v, err
}
