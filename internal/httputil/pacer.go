// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"
)

// Pacer inserts a fixed courtesy delay before an outbound request stage.
// A zero or nil Pacer does not wait.
type Pacer struct {
	Delay time.Duration

	// Sleep replaces the timer wait when set. Tests use it to count waits.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Wait sleeps for the configured delay, returning ctx.Err() if the context
// is cancelled first.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.Delay <= 0 {
		return ctx.Err()
	}
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay)
	}
	return sleep(ctx, p.Delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
