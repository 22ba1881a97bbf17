package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDo_NoRetryWhenFirstAttemptSucceeds(t *testing.T) {
	var fetches int
	err := Do(context.Background(), 3, 10*time.Millisecond, func() error {
		fetches++
		return nil
	})
	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}
}

func TestDo_RecoversFromTransientUpstreamErrors(t *testing.T) {
	// Two 5xx-style hiccups, then the provider answers.
	var fetches int
	err := Do(context.Background(), 3, 10*time.Millisecond, func() error {
		fetches++
		if fetches < 3 {
			return errors.New("weather provider returned 503")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if fetches != 3 {
		t.Fatalf("fetches = %d, want 3", fetches)
	}
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	var fetches int
	upstreamDown := errors.New("weather provider unreachable")
	err := Do(context.Background(), 3, 10*time.Millisecond, func() error {
		fetches++
		return upstreamDown
	})
	if !errors.Is(err, upstreamDown) {
		t.Fatalf("Do() = %v, want the upstream error", err)
	}
	if fetches != 3 {
		t.Fatalf("fetches = %d, want 3", fetches)
	}
}

func TestDo_PermanentErrorSkipsRemainingAttempts(t *testing.T) {
	// A 4xx response means the request itself is wrong; retrying cannot help.
	var fetches int
	badRequest := errors.New("weather provider returned 400")
	err := Do(context.Background(), 5, 10*time.Millisecond, func() error {
		fetches++
		return Permanent(badRequest)
	})
	if !errors.Is(err, badRequest) {
		t.Fatalf("Do() = %v, want the wrapped error", err)
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}
}

func TestDo_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var fetches atomic.Int32
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, 10, 100*time.Millisecond, func() error {
		fetches.Add(1)
		return errors.New("still failing")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() = %v, want context.Canceled", err)
	}
	if c := fetches.Load(); c > 3 {
		t.Fatalf("fetches = %d, want at most 3 before cancellation", c)
	}
}

func TestDo_ZeroAttemptsRoundsUpToOne(t *testing.T) {
	var fetches int
	err := Do(context.Background(), 0, time.Millisecond, func() error {
		fetches++
		return nil
	})
	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}
}

func TestDo_WaitsBetweenAttempts(t *testing.T) {
	var timestamps []time.Time
	err := Do(context.Background(), 4, 20*time.Millisecond, func() error {
		timestamps = append(timestamps, time.Now())
		if len(timestamps) < 4 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if len(timestamps) != 4 {
		t.Fatalf("attempts = %d, want 4", len(timestamps))
	}
	// Gaps grow with the doubling backoff; only a loose lower bound is
	// asserted to keep the test stable under scheduler jitter.
	for i := 1; i < len(timestamps); i++ {
		if gap := timestamps[i].Sub(timestamps[i-1]); gap < 5*time.Millisecond {
			t.Errorf("gap %d = %v, want at least 5ms", i, gap)
		}
	}
}

func TestPermanent_PreservesWrappedError(t *testing.T) {
	inner := errors.New("bad coordinates")
	if !errors.Is(Permanent(inner), inner) {
		t.Fatal("Permanent should unwrap to the original error")
	}
}
