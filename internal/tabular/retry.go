package tabular

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Policy bounds transport retries.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy matches the Sheets API guidance: a handful of attempts with
// exponential spacing.
var DefaultPolicy = Policy{
	MaxAttempts: 5,
	BaseDelay:   500 * time.Millisecond,
	Multiplier:  2.0,
}

// retryStore decorates a Store with bounded exponential-backoff retries for
// retryable failures and an optional request rate ceiling. Non-retryable
// errors (permissions, malformed requests) pass through immediately.
type retryStore struct {
	inner   Store
	policy  Policy
	limiter *rate.Limiter
}

// WithRetry wraps store with the given retry policy. rps > 0 additionally
// caps the outgoing request rate, which keeps a tight poll interval from
// burning the per-minute API quota.
func WithRetry(store Store, policy Policy, rps float64) Store {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &retryStore{inner: store, policy: policy, limiter: limiter}
}

func (r *retryStore) do(ctx context.Context, op func() error) error {
	attempt := func() error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		err := op()
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.policy.BaseDelay
	bo.Multiplier = r.policy.Multiplier
	bo.MaxElapsedTime = 0

	return backoff.Retry(attempt, backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(r.policy.MaxAttempts-1)), ctx))
}

func (r *retryStore) GetValues(ctx context.Context, storeID, rangeSpec string) ([][]string, error) {
	var out [][]string
	err := r.do(ctx, func() error {
		var err error
		out, err = r.inner.GetValues(ctx, storeID, rangeSpec)
		return err
	})
	return out, err
}

func (r *retryStore) UpdateValues(ctx context.Context, storeID, rangeSpec string, values [][]any) error {
	return r.do(ctx, func() error {
		return r.inner.UpdateValues(ctx, storeID, rangeSpec, values)
	})
}

func (r *retryStore) ClearRange(ctx context.Context, storeID, rangeSpec string) error {
	return r.do(ctx, func() error {
		return r.inner.ClearRange(ctx, storeID, rangeSpec)
	})
}

func (r *retryStore) ListSheetTitles(ctx context.Context, storeID string) ([]string, error) {
	var out []string
	err := r.do(ctx, func() error {
		var err error
		out, err = r.inner.ListSheetTitles(ctx, storeID)
		return err
	})
	return out, err
}

func (r *retryStore) EnsureSheetExists(ctx context.Context, storeID, title string) (string, error) {
	var out string
	err := r.do(ctx, func() error {
		var err error
		out, err = r.inner.EnsureSheetExists(ctx, storeID, title)
		return err
	})
	return out, err
}
