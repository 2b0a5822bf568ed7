package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	b := NewCircuitBreaker(3, 2, 10*time.Second)
	b.now = clock.now
	return b
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	ep := EndpointHillClimb

	assert.True(t, b.Allow(ep))
	b.RecordFailure(ep)
	b.RecordFailure(ep)
	assert.Equal(t, CircuitStateClosed, b.State(ep))
	b.RecordFailure(ep)
	assert.Equal(t, CircuitStateOpen, b.State(ep))
	assert.False(t, b.Allow(ep))

	// Other endpoints are unaffected.
	assert.True(t, b.Allow(EndpointAnnealing))
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	ep := EndpointGenetic

	b.RecordFailure(ep)
	b.RecordFailure(ep)
	b.RecordSuccess(ep)
	b.RecordFailure(ep)
	b.RecordFailure(ep)
	assert.Equal(t, CircuitStateClosed, b.State(ep))
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	ep := EndpointHillClimbRetry

	for i := 0; i < 3; i++ {
		b.RecordFailure(ep)
	}
	assert.False(t, b.Allow(ep))

	clock.advance(10 * time.Second)
	assert.True(t, b.Allow(ep))
	assert.Equal(t, CircuitStateHalfOpen, b.State(ep))

	b.RecordSuccess(ep)
	assert.Equal(t, CircuitStateHalfOpen, b.State(ep))
	b.RecordSuccess(ep)
	assert.Equal(t, CircuitStateClosed, b.State(ep))
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	ep := EndpointAllMethods

	for i := 0; i < 3; i++ {
		b.RecordFailure(ep)
	}
	clock.advance(11 * time.Second)
	assert.Equal(t, CircuitStateHalfOpen, b.State(ep))

	b.RecordFailure(ep)
	assert.Equal(t, CircuitStateOpen, b.State(ep))
	assert.False(t, b.Allow(ep))
}
