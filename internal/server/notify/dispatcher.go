package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/sethvargo/go-retry"
)

// Dispatcher wraps a Notifier with a fixed number of attempts, a fixed
// backoff between them and an overall deadline.
type Dispatcher struct {
	notifier Notifier
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

func NewDispatcher(n Notifier, attempts int, backoff, timeout time.Duration) *Dispatcher {
	if attempts < 1 {
		attempts = 1
	}
	return &Dispatcher{notifier: n, attempts: attempts, backoff: backoff, timeout: timeout}
}

// Configured reports whether a transport is present.
func (d *Dispatcher) Configured() bool {
	return d != nil && d.notifier != nil
}

// Dispatch sends the code, retrying until it succeeds, the attempts run out
// or the deadline passes. Failures are wrapped in common.ErrUpstream.
func (d *Dispatcher) Dispatch(ctx context.Context, to, code string, ttl time.Duration) error {
	if !d.Configured() {
		return fmt.Errorf("%w: no notifier configured", common.ErrUpstream)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	b := retry.WithMaxRetries(uint64(d.attempts-1), retry.NewConstant(d.backoff))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := d.notifier.SendOTP(ctx, to, code, ttl); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: send otp: %v", common.ErrUpstream, err)
	}
	return nil
}
