package circuit

import (
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Threshold:        3,
		Timeout:          50 * time.Millisecond,
		SuccessThreshold: 2,
		MaxHalfOpen:      2,
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker("test", testConfig(), nil)
	failing := errors.New("boom")

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return failing })
	}

	if b.State() != StateOpen {
		t.Fatalf("state = %v, want OPEN", b.State())
	}

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b := NewBreaker("test", testConfig(), nil)

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return errors.New("boom") })
	}
	if !b.IsOpen() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(60 * time.Millisecond)

	// Two successes in half-open close the circuit.
	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("half-open call %d: %v", i+1, err)
		}
	}

	if b.State() != StateClosed {
		t.Fatalf("state = %v, want CLOSED", b.State())
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := NewBreaker("test", testConfig(), nil)

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return errors.New("boom") })
	}

	time.Sleep(60 * time.Millisecond)

	_ = b.Execute(func() error { return errors.New("still down") })
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want OPEN after half-open failure", b.State())
	}
}

func TestBreakerSuccessKeepsClosed(t *testing.T) {
	b := NewBreaker("test", testConfig(), nil)

	for i := 0; i < 10; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want CLOSED", b.State())
	}
}

func TestBreakerReset(t *testing.T) {
	b := NewBreaker("test", testConfig(), nil)

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return errors.New("boom") })
	}
	b.Reset()

	if b.State() != StateClosed {
		t.Fatalf("state = %v, want CLOSED after reset", b.State())
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Errorf("call after reset: %v", err)
	}
}
