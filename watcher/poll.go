// Package watcher waits for on-chain balances to reach a threshold.
package watcher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

const (
	// DefaultInterval is the pause between two reads.
	DefaultInterval = 10 * time.Second
	// DefaultMaxWait bounds a single wait.
	DefaultMaxWait = 2 * time.Hour
)

var errNotReached = errors.New("threshold not reached")

// Options controls a bounded poll.
type Options struct {
	// Interval is the constant pause between reads.
	Interval time.Duration
	// MaxWait bounds the total polling time. Zero disables the bound.
	MaxWait time.Duration
	// InitialDelay is waited once before the first read and is not counted against MaxWait.
	InitialDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// CheckFunc reports whether the awaited condition holds.
// A returned error is treated as a transient read failure.
type CheckFunc func(ctx context.Context) (bool, error)

// NotifyFunc receives every unsuccessful check. err is nil when the read succeeded
// but the condition did not hold yet.
type NotifyFunc func(err error, next time.Duration)

// Poll runs check at a constant interval until it reports true, MaxWait elapses or ctx is done.
//
// Parameters:
// - ctx: the context for the wait.
// - opts: interval, bound and initial delay.
// - timeoutErr: the sentinel wrapped into the error returned when MaxWait elapses.
// - check: the condition to evaluate.
// - notify: receives each unsuccessful check, may be nil.
//
// Returns:
// - error: nil once check holds, ctx.Err() on cancellation, or an error whose cause is timeoutErr.
func Poll(ctx context.Context, opts Options, timeoutErr error, check CheckFunc, notify NotifyFunc) error {
	opts = opts.withDefaults()

	if err := Sleep(ctx, opts.InitialDelay); err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.Interval
	b.MaxInterval = opts.Interval
	b.Multiplier = 1
	b.RandomizationFactor = 0
	b.MaxElapsedTime = opts.MaxWait

	var lastErr error
	operation := func() error {
		ok, err := check(ctx)
		if err != nil {
			lastErr = err
			return err
		}
		lastErr = nil
		if !ok {
			return errNotReached
		}
		return nil
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, next time.Duration) {
			if err == errNotReached {
				err = nil
			}
			notify(err, next)
		}
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), onRetry)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if lastErr != nil {
		return errors.Wrapf(timeoutErr, "gave up after %s, last read error: %v", opts.MaxWait, lastErr)
	}
	return errors.Wrapf(timeoutErr, "gave up after %s", opts.MaxWait)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
