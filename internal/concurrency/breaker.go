// Package concurrency holds per-trader failure isolation used by the
// Scheduler. Retries are never attempted within a cycle (spec §7): a
// trader that fails simply waits for its endpoint on the next cycle, and
// this package's only job is to stop wasting cycles on a trader whose
// endpoint has failed persistently, via a circuit breaker that itself
// recovers between cycles (never slept/retried in-process).
package concurrency

import (
	"fmt"
	"sync"
	"time"
)

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreakerConfig configures one breaker.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	RecoveryTimeout  time.Duration // time before a half-open probe is allowed
	SuccessThreshold int           // successes needed to close from half-open
}

// CircuitBreaker trips open after FailureThreshold consecutive failures
// and stays open until RecoveryTimeout elapses, at which point a single
// probe call is allowed through (half-open) before closing again.
type CircuitBreaker struct {
	mu           sync.Mutex
	name         string
	state        CircuitState
	failures     int
	successes    int
	lastFailTime time.Time
	config       CircuitBreakerConfig
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 3
	}
	if config.RecoveryTimeout == 0 {
		config.RecoveryTimeout = 10 * time.Minute
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 1
	}
	return &CircuitBreaker{name: config.Name, config: config}
}

// Call runs fn exactly once if the breaker currently allows it, recording
// the result. It never retries or sleeps; a blocked call returns
// immediately with an "open" error, leaving the actual retry to the next
// scheduled cycle.
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if !cb.canExecuteLocked() {
		cb.mu.Unlock()
		return fmt.Errorf("circuit breaker %s is open", cb.name)
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	cb.recordResultLocked(err)
	cb.mu.Unlock()

	return err
}

func (cb *CircuitBreaker) canExecuteLocked() bool {
	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailTime) >= cb.config.RecoveryTimeout {
			cb.state = StateHalfOpen
			cb.successes = 0
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordResultLocked(err error) {
	isFailure := err != nil

	switch cb.state {
	case StateClosed:
		if isFailure {
			cb.failures++
			cb.lastFailTime = time.Now()
			if cb.failures >= cb.config.FailureThreshold {
				cb.state = StateOpen
			}
		} else {
			cb.failures = 0
		}
	case StateHalfOpen:
		if isFailure {
			cb.state = StateOpen
			cb.failures++
			cb.lastFailTime = time.Now()
		} else {
			cb.successes++
			if cb.successes >= cb.config.SuccessThreshold {
				cb.state = StateClosed
				cb.failures = 0
				cb.successes = 0
			}
		}
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureRateTracker tracks a rolling failure rate over a fixed window,
// used to decide whether a trader's ingest is chronically unreliable
// (spec §7 supplement: surfaced for monitoring, not for in-cycle retry).
type FailureRateTracker struct {
	mu          sync.Mutex
	failures    int
	totalCalls  int
	windowStart time.Time
	windowSize  time.Duration
}

func NewFailureRateTracker(windowSize time.Duration) *FailureRateTracker {
	return &FailureRateTracker{windowStart: time.Now(), windowSize: windowSize}
}

// RecordCall records one call's outcome, resetting the window once it
// has elapsed.
func (t *FailureRateTracker) RecordCall(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if time.Since(t.windowStart) >= t.windowSize {
		t.failures = 0
		t.totalCalls = 0
		t.windowStart = time.Now()
	}
	t.totalCalls++
	if !success {
		t.failures++
	}
}

// FailureRate returns the current window's failure rate, 0 if no calls
// have been recorded yet.
func (t *FailureRateTracker) FailureRate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.totalCalls == 0 {
		return 0
	}
	return float64(t.failures) / float64(t.totalCalls)
}
