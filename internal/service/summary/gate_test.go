package summary

import (
	"testing"
	"time"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/state"
)

func newTestGate(t *testing.T) (*Gate, *state.Store, *time.Time) {
	t.Helper()

	states, err := state.New(t.TempDir())
	if err != nil {
		t.Fatalf("new state store: %v", err)
	}

	now := time.Unix(1700000000, 0)
	g := NewGate(states)
	g.now = func() time.Time { return now }
	return g, states, &now
}

func TestGate_FirstWriteAllowed(t *testing.T) {
	t.Parallel()

	g, _, _ := newTestGate(t)
	if d := g.Check("Сводная - Май", "h1", time.Minute); d != DecisionWrite {
		t.Fatalf("decision = %v, want write", d)
	}
}

func TestGate_UnchangedContentAlwaysNoop(t *testing.T) {
	t.Parallel()

	g, _, now := newTestGate(t)
	if err := g.Commit("Сводная - Май", "h1"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// immediately
	if d := g.Check("Сводная - Май", "h1", time.Minute); d != DecisionNoChange {
		t.Fatalf("decision = %v, want no-change", d)
	}
	// and long after the interval: elapsed time is irrelevant for equal content
	*now = now.Add(48 * time.Hour)
	if d := g.Check("Сводная - Май", "h1", time.Minute); d != DecisionNoChange {
		t.Fatalf("decision = %v, want no-change after long wait", d)
	}
}

func TestGate_ThrottleLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	g, states, now := newTestGate(t)
	if err := g.Commit("Сводная - Май", "h1"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	*now = now.Add(10 * time.Second)
	if d := g.Check("Сводная - Май", "h2", time.Minute); d != DecisionThrottled {
		t.Fatalf("decision = %v, want throttled", d)
	}
	if st := states.Load("Сводная - Май"); st.Hash != "h1" {
		t.Fatalf("throttle modified persisted state: %+v", st)
	}

	// once the interval elapses, the same change goes through
	*now = now.Add(time.Minute)
	if d := g.Check("Сводная - Май", "h2", time.Minute); d != DecisionWrite {
		t.Fatalf("decision = %v, want write after interval", d)
	}
}

func TestGate_IdentitiesIsolated(t *testing.T) {
	t.Parallel()

	g, _, _ := newTestGate(t)
	if err := g.Commit("Сводная - Май", "h1"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// a fresh identity is not throttled by the other one's recent write
	if d := g.Check("Сводная - Июнь", "h1", time.Hour); d != DecisionWrite {
		t.Fatalf("decision = %v, want write for independent identity", d)
	}
}
