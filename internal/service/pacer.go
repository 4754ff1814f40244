package service

import (
	"context"
	"time"
)

// Default pacing between external calls in sequential batches.
const (
	DefaultDelay        = 500 * time.Millisecond
	DefaultFailureDelay = time.Second
)

// Pacer spaces sequential external calls. The wait after a failed call is
// longer so a degraded provider is not hammered.
type Pacer struct {
	Delay        time.Duration
	FailureDelay time.Duration
}

// Wait blocks for the configured delay or until ctx is done.
func (p Pacer) Wait(ctx context.Context, failed bool) error {
	d := p.Delay
	if failed {
		d = p.FailureDelay
	}
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
