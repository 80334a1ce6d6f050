package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errUpstream = errors.New("upstream failed")

func run(b *Breaker, fail bool) error {
	return b.Do(context.Background(), func(context.Context) error {
		if fail {
			return errUpstream
		}
		return nil
	})
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		calls    []bool // true = failure
		expected State
	}{
		{"stays closed on successes", []bool{false, false, false}, StateClosed},
		{"stays closed below threshold", []bool{true, true, false, true}, StateClosed},
		{"opens after consecutive failures", []bool{true, true, true}, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("test", Settings{
				ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
			})
			for _, fail := range tt.calls {
				_ = run(b, fail)
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("test", Settings{
		Cooldown:   time.Second,
		ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:        clock.Now,
	})

	require.ErrorIs(t, run(b, true), errUpstream)

	called := false
	err := b.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := New("model", Settings{
		MaxProbes:  2,
		Cooldown:   time.Second,
		ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:        clock.Now,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = run(b, true)
	clock.Advance(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, run(b, false))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, run(b, false))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("test", Settings{
		Cooldown:   time.Second,
		ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:        clock.Now,
	})

	_ = run(b, true)
	clock.Advance(2 * time.Second)
	_ = run(b, true)

	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerLimitsProbes(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("test", Settings{
		MaxProbes:  1,
		Cooldown:   time.Second,
		ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:        clock.Now,
	})
	_ = run(b, true)
	clock.Advance(2 * time.Second)

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(context.Background(), func(context.Context) error {
			<-release
			return nil
		})
	}()

	require.Eventually(t, func() bool { return b.Counts().Calls == 1 }, time.Second, time.Millisecond)
	assert.ErrorIs(t, run(b, false), ErrTooManyRequests)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b := New("test", Settings{
		ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	err := b.Do(context.Background(), func(context.Context) error { return context.Canceled })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().Successes)
}

func TestBreakerWindowResetsCounts(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("test", Settings{
		Window:     time.Minute,
		ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
		Now:        clock.Now,
	})

	_ = run(b, true)
	_ = run(b, true)
	clock.Advance(2 * time.Minute)
	_ = run(b, true)

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().Failures)
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("test", Settings{
		ShouldTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	assert.Panics(t, func() {
		_ = b.Do(context.Background(), func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, StateOpen, b.State())
}
