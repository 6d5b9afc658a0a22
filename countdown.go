package landing

import (
	"context"
	"sync"
	"time"
)

// ResendCooldownSeconds is how long the resend control stays disabled
const ResendCooldownSeconds = 60

// Countdown is the resend timer of the verification view
type Countdown struct {
	mu        sync.Mutex
	remaining int
}

// NewCountdown returns a countdown with the given seconds left, clamped to
// [0, ResendCooldownSeconds].
func NewCountdown(remaining int) *Countdown {
	c := &Countdown{}
	c.set(remaining)
	return c
}

// Resend restarts the countdown
func (c *Countdown) Resend() {
	c.mu.Lock()
	c.remaining = ResendCooldownSeconds
	c.mu.Unlock()
}

// Tick removes one second while the countdown is positive
func (c *Countdown) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

// Advance applies one tick per whole second in d
func (c *Countdown) Advance(d time.Duration) int {
	if d <= 0 {
		return c.Remaining()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining -= int(d / time.Second)
	if c.remaining < 0 {
		c.remaining = 0
	}
	return c.remaining
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// CanResend is true once the countdown reached zero
func (c *Countdown) CanResend() bool {
	return c.Remaining() == 0
}

// Run ticks once per value received from ticks until the countdown reaches
// zero or ctx is done. Cancelling ctx stops any pending tick.
//
// It is meant for callers that keep a countdown alive server side. The
// verification page ticks its own copy in the browser and only reads
// Remaining when rendering.
func (c *Countdown) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		if c.CanResend() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			c.Tick()
		}
	}
}

func (c *Countdown) set(remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case remaining < 0:
		c.remaining = 0
	case remaining > ResendCooldownSeconds:
		c.remaining = ResendCooldownSeconds
	default:
		c.remaining = remaining
	}
}
