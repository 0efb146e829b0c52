package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail() (interface{}, error)    { return nil, errBoom }
func succeed() (interface{}, error) { return "ok", nil }

func TestTripsAfterFailureThreshold(t *testing.T) {
	cb := New(2, 1, time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(fail); !errors.Is(err, errBoom) {
			t.Fatalf("Execute() error = %v, want errBoom", err)
		}
	}

	if cb.State() != Open {
		t.Fatalf("state = %v, want Open", cb.State())
	}
	if _, err := cb.Execute(succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(2, 1, time.Hour)

	cb.Execute(fail)
	cb.Execute(succeed)
	cb.Execute(fail)

	if cb.State() != Closed {
		t.Errorf("state = %v, want Closed after interleaved success", cb.State())
	}
}

func TestRecoversThroughHalfOpen(t *testing.T) {
	cb := New(1, 2, 10*time.Millisecond)

	cb.Execute(fail)
	if cb.State() != Open {
		t.Fatalf("state = %v, want Open", cb.State())
	}

	time.Sleep(20 * time.Millisecond)
	if cb.State() != HalfOpen {
		t.Fatalf("state = %v, want HalfOpen after timeout", cb.State())
	}

	if _, err := cb.Execute(succeed); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if cb.State() != HalfOpen {
		t.Fatalf("state = %v, want HalfOpen until success threshold", cb.State())
	}

	cb.Execute(succeed)
	if cb.State() != Closed {
		t.Errorf("state = %v, want Closed after recovery", cb.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(1, 1, 10*time.Millisecond)

	cb.Execute(fail)
	time.Sleep(20 * time.Millisecond)

	if _, err := cb.Execute(fail); !errors.Is(err, errBoom) {
		t.Fatalf("Execute() error = %v, want errBoom", err)
	}
	if cb.State() != Open {
		t.Errorf("state = %v, want Open after failed probe", cb.State())
	}
}
