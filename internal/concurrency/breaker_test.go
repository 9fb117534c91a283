package concurrency

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "x", FailureThreshold: 2, RecoveryTimeout: time.Hour})

	failing := errors.New("boom")
	_ = cb.Call(func() error { return failing })
	if cb.State() != StateClosed {
		t.Fatalf("state after 1 failure = %v, want Closed", cb.State())
	}
	_ = cb.Call(func() error { return failing })
	if cb.State() != StateOpen {
		t.Fatalf("state after 2 failures = %v, want Open", cb.State())
	}
}

func TestCircuitBreaker_BlocksCallsWhileOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "x", FailureThreshold: 1, RecoveryTimeout: time.Hour})
	_ = cb.Call(func() error { return errors.New("boom") })

	called := false
	err := cb.Call(func() error { called = true; return nil })
	if called {
		t.Error("fn should not run while breaker is open")
	}
	if err == nil {
		t.Error("expected an error while breaker is open")
	}
}

func TestCircuitBreaker_HalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "x", FailureThreshold: 1, RecoveryTimeout: time.Millisecond, SuccessThreshold: 1})
	_ = cb.Call(func() error { return errors.New("boom") })
	time.Sleep(5 * time.Millisecond)

	if err := cb.Call(func() error { return nil }); err != nil {
		t.Fatalf("half-open probe should have been allowed, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state after successful probe = %v, want Closed", cb.State())
	}
}

func TestFailureRateTracker_ComputesRateWithinWindow(t *testing.T) {
	ft := NewFailureRateTracker(time.Hour)
	ft.RecordCall(true)
	ft.RecordCall(false)
	ft.RecordCall(false)

	if got := ft.FailureRate(); got != 2.0/3.0 {
		t.Errorf("failureRate = %v, want %v", got, 2.0/3.0)
	}
}
