package landing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownStartsAtZero(t *testing.T) {
	c := NewCountdown(0)
	assert.Equal(t, 0, c.Remaining())
	assert.True(t, c.CanResend())
}

func TestNewCountdownClamps(t *testing.T) {
	assert.Equal(t, 0, NewCountdown(-5).Remaining())
	assert.Equal(t, ResendCooldownSeconds, NewCountdown(600).Remaining())
	assert.Equal(t, 12, NewCountdown(12).Remaining())
}

func TestCountdownResendAndTick(t *testing.T) {
	c := NewCountdown(0)
	c.Resend()
	assert.Equal(t, 60, c.Remaining())
	assert.False(t, c.CanResend())

	for i := 0; i < 59; i++ {
		c.Tick()
	}
	assert.Equal(t, 1, c.Remaining())
	assert.False(t, c.CanResend())

	assert.Equal(t, 0, c.Tick())
	assert.True(t, c.CanResend())

	assert.Equal(t, 0, c.Tick())
}

func TestCountdownResendMidway(t *testing.T) {
	c := NewCountdown(0)
	c.Resend()
	c.Advance(45 * time.Second)
	require.Equal(t, 15, c.Remaining())

	c.Resend()
	assert.Equal(t, 60, c.Remaining())
}

func TestCountdownAdvance(t *testing.T) {
	c := NewCountdown(ResendCooldownSeconds)

	assert.Equal(t, 60, c.Advance(999*time.Millisecond))
	assert.Equal(t, 59, c.Advance(1500*time.Millisecond))
	assert.Equal(t, 60-1-20, c.Advance(20*time.Second))
	assert.Equal(t, 39, c.Advance(-time.Second))
	assert.Equal(t, 0, c.Advance(time.Hour))
}

func TestCountdownRunTicksUntilZero(t *testing.T) {
	c := NewCountdown(3)
	ticks := make(chan time.Time, 10)
	for i := 0; i < 10; i++ {
		ticks <- time.Time{}
	}

	c.Run(context.Background(), ticks)

	assert.Equal(t, 0, c.Remaining())
	assert.Len(t, ticks, 7)
}

func TestCountdownRunStopsOnCancel(t *testing.T) {
	c := NewCountdown(0)
	c.Resend()

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)
	done := make(chan struct{})

	go func() {
		c.Run(ctx, ticks)
		close(done)
	}()

	ticks <- time.Time{}
	ticks <- time.Time{}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown kept running after cancel")
	}

	assert.Equal(t, 58, c.Remaining())
}

func TestCountdownRunStopsOnClosedTicks(t *testing.T) {
	c := NewCountdown(10)
	ticks := make(chan time.Time, 2)
	ticks <- time.Time{}
	close(ticks)

	c.Run(context.Background(), ticks)
	assert.Equal(t, 9, c.Remaining())
}
