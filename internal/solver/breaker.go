package solver

import (
	"sync"
	"time"
)

// CircuitState is the state of one endpoint's circuit
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker tracks failures per solver endpoint and rejects calls to an
// endpoint while its circuit is open.
type CircuitBreaker struct {
	// failureThreshold is the number of consecutive failures before opening the circuit
	failureThreshold int
	// successThreshold is the number of successes needed in half-open state to close
	successThreshold int
	// timeout is how long the circuit stays open before transitioning to half-open
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	circuits map[string]*circuitState
}

type circuitState struct {
	state           CircuitState
	failureCount    int
	successCount    int
	lastStateChange time.Time
}

// NewCircuitBreaker creates a circuit breaker
func NewCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		now:              time.Now,
		circuits:         make(map[string]*circuitState),
	}
}

// circuit returns the state for endpoint, creating a closed one if needed.
// Callers must hold b.mu.
func (b *CircuitBreaker) circuit(endpoint string) *circuitState {
	c, ok := b.circuits[endpoint]
	if !ok {
		c = &circuitState{state: CircuitStateClosed, lastStateChange: b.now()}
		b.circuits[endpoint] = c
	}
	if c.state == CircuitStateOpen && b.now().Sub(c.lastStateChange) >= b.timeout {
		c.state = CircuitStateHalfOpen
		c.successCount = 0
		c.lastStateChange = b.now()
	}
	return c
}

// Allow reports whether a call to endpoint may proceed
func (b *CircuitBreaker) Allow(endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.circuit(endpoint).state != CircuitStateOpen
}

// RecordSuccess records a successful call
func (b *CircuitBreaker) RecordSuccess(endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(endpoint)
	switch c.state {
	case CircuitStateHalfOpen:
		c.successCount++
		if c.successCount >= b.successThreshold {
			c.state = CircuitStateClosed
			c.failureCount = 0
			c.lastStateChange = b.now()
		}
	case CircuitStateClosed:
		c.failureCount = 0
	}
}

// RecordFailure records a failed call
func (b *CircuitBreaker) RecordFailure(endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(endpoint)
	c.failureCount++
	switch c.state {
	case CircuitStateHalfOpen:
		// Any failure in half-open state immediately reopens the circuit
		c.state = CircuitStateOpen
		c.successCount = 0
		c.lastStateChange = b.now()
	case CircuitStateClosed:
		if c.failureCount >= b.failureThreshold {
			c.state = CircuitStateOpen
			c.lastStateChange = b.now()
		}
	}
}

// State returns the current state of endpoint's circuit
func (b *CircuitBreaker) State(endpoint string) CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.circuit(endpoint).state
}
