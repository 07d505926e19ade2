package qsim

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

/*
CircuitState represents the state of the circuit breaker.
*/
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Accelerator in use
	CircuitOpen                         // Accelerator skipped, CPU only
	CircuitHalfOpen                     // Probing the accelerator again
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

/*
CircuitBreaker guards the acceleration backend. Each failed multiply is
recorded; once maxFailures accumulate the breaker opens and the engine stops
calling the backend, computing on the CPU instead. After resetTimeout it goes
half-open and lets up to halfOpenMax calls probe the backend; enough
successes close it, a failure opens it again.

It implements Regulator, so the engine consults it through Limit.
*/
type CircuitBreaker struct {
	mu               sync.RWMutex
	maxFailures      int           // Failures before opening
	resetTimeout     time.Duration // Time spent open before probing
	halfOpenMax      int           // Successful probes needed to close
	failureCount     int
	state            CircuitState
	openTime         time.Time
	halfOpenAttempts int
	metrics          *Metrics
}

/*
NewCircuitBreaker creates a breaker in the closed state.
*/
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	if halfOpenMax < 1 {
		halfOpenMax = 1
	}

	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  halfOpenMax,
		state:        CircuitClosed,
	}
}

/*
Observe implements Regulator. The breaker publishes its state transitions to
the observed metrics.
*/
func (cb *CircuitBreaker) Observe(metrics *Metrics) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.metrics = metrics
}

/*
Limit implements Regulator: true means the accelerator must not be called.
*/
func (cb *CircuitBreaker) Limit() bool {
	return !cb.Allow()
}

/*
Renormalize implements Regulator by moving an open breaker whose timeout has
elapsed to half-open.
*/
func (cb *CircuitBreaker) Renormalize() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && time.Since(cb.openTime) > cb.resetTimeout {
		cb.transition(CircuitHalfOpen)
	}
}

/*
RecordFailure records a failed backend call.
*/
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	switch cb.state {
	case CircuitHalfOpen:
		cb.transition(CircuitOpen)
	case CircuitClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.transition(CircuitOpen)
		}
	}
}

/*
RecordSuccess records a successful backend call.
*/
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.transition(CircuitClosed)
		}
	case CircuitClosed:
		cb.failureCount = 0
	}
}

/*
Allow reports whether the backend may be called now.
*/
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) > cb.resetTimeout {
			cb.transition(CircuitHalfOpen)
			return true
		}
		return false
	case CircuitHalfOpen:
		return cb.halfOpenAttempts < cb.halfOpenMax
	default:
		return false
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to

	switch to {
	case CircuitOpen:
		cb.openTime = time.Now()
	case CircuitHalfOpen:
		cb.halfOpenAttempts = 0
	case CircuitClosed:
		cb.failureCount = 0
		cb.halfOpenAttempts = 0
	}

	errnie.Info("backend circuit breaker %s -> %s", from, to)

	if cb.metrics != nil {
		cb.metrics.recordBreakerState(to)
	}
}
