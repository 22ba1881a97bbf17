package circuitbreaker

import (
	"sync"
	"testing"
	"time"
)

// The production caller keys the breaker on the Gemini upstream and trips it
// after 3 consecutive failures; tests use the same shape.
const upstream = "gemini"

func TestBreaker_AllowsHealthyUpstream(t *testing.T) {
	b := New(3, 100*time.Millisecond)
	if !b.Allow(upstream) {
		t.Fatal("closed circuit should allow requests")
	}
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure(upstream)
	b.RecordFailure(upstream)
	if !b.Allow(upstream) {
		t.Fatal("two failures should not trip a threshold of three")
	}

	b.RecordFailure(upstream)
	if b.Allow(upstream) {
		t.Fatal("third failure should open the circuit")
	}
	if b.State(upstream) != StateOpen {
		t.Fatalf("state = %v, want StateOpen", b.State(upstream))
	}
}

func TestBreaker_ProbesAfterCooldown(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure(upstream)
	b.RecordFailure(upstream)
	if b.Allow(upstream) {
		t.Fatal("circuit should be open")
	}

	time.Sleep(60 * time.Millisecond)

	// One probe request is let through after the cooldown.
	if !b.Allow(upstream) {
		t.Fatal("should allow a probe after the cooldown")
	}
	if b.State(upstream) != StateHalfOpen {
		t.Fatalf("state = %v, want StateHalfOpen", b.State(upstream))
	}

	// Concurrent quote requests stay on the fallback until the probe lands.
	if b.Allow(upstream) {
		t.Fatal("only one probe may be in flight")
	}
}

func TestBreaker_SuccessfulProbeCloses(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure(upstream)
	b.RecordFailure(upstream)
	time.Sleep(60 * time.Millisecond)
	b.Allow(upstream)

	b.RecordSuccess(upstream)
	if b.State(upstream) != StateClosed {
		t.Fatalf("state = %v, want StateClosed after recovery", b.State(upstream))
	}
	if !b.Allow(upstream) {
		t.Fatal("recovered circuit should allow requests")
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure(upstream)
	b.RecordFailure(upstream)
	time.Sleep(60 * time.Millisecond)
	b.Allow(upstream)

	b.RecordFailure(upstream)
	if b.State(upstream) != StateOpen {
		t.Fatalf("state = %v, want StateOpen after failed probe", b.State(upstream))
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure(upstream)
	b.RecordFailure(upstream)
	b.RecordSuccess(upstream)

	// The counter tracks consecutive failures, not total.
	b.RecordFailure(upstream)
	if !b.Allow(upstream) {
		t.Fatal("one failure after a success should not trip the breaker")
	}
}

func TestBreaker_KeysAreIndependent(t *testing.T) {
	b := New(2, 100*time.Millisecond)

	b.RecordFailure(upstream)
	b.RecordFailure(upstream)

	if b.Allow(upstream) {
		t.Fatal("gemini circuit should be open")
	}
	if !b.Allow("open-meteo") {
		t.Fatal("an unrelated upstream should be unaffected")
	}
}

func TestBreaker_UnknownKeyIsClosed(t *testing.T) {
	b := New(2, 100*time.Millisecond)
	if b.State("never-seen") != StateClosed {
		t.Fatalf("state = %v, want StateClosed for unknown key", b.State("never-seen"))
	}
}

func TestBreaker_OnTransitionCallback(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	var mu sync.Mutex
	var transitions []struct{ from, to State }
	b.OnTransition(func(key string, from, to State) {
		mu.Lock()
		transitions = append(transitions, struct{ from, to State }{from, to})
		mu.Unlock()
	})

	b.RecordFailure(upstream)
	b.RecordFailure(upstream)

	// The callback runs on its own goroutine.
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(transitions))
	}
	if transitions[0].from != StateClosed || transitions[0].to != StateOpen {
		t.Fatalf("transition %v→%v, want closed→open", transitions[0].from, transitions[0].to)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
