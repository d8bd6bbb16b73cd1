package summary

import (
	"time"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/state"
)

// Decision is the throttle gate's verdict for one candidate write.
type Decision int

const (
	// DecisionWrite: content changed and the interval has elapsed.
	DecisionWrite Decision = iota
	// DecisionNoChange: fingerprint matches the last persisted write.
	DecisionNoChange
	// DecisionThrottled: content changed but the last write is too recent.
	// Persisted state stays untouched so the change is picked up later.
	DecisionThrottled
)

func (d Decision) String() string {
	switch d {
	case DecisionWrite:
		return "write"
	case DecisionNoChange:
		return "no-change"
	case DecisionThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// Gate bounds write frequency independent of poll frequency. Each report
// identity has its own persisted {hash, last write} record; two reports never
// share throttle state.
type Gate struct {
	states *state.Store
	now    func() time.Time
}

func NewGate(states *state.Store) *Gate {
	return &Gate{states: states, now: time.Now}
}

// Check decides what to do with a report whose assembled content hashes to
// newHash, given a minimum interval between writes for this identity.
func (g *Gate) Check(report, newHash string, minInterval time.Duration) Decision {
	st := g.states.Load(report)
	if st.Hash == newHash {
		return DecisionNoChange
	}

	lastWrite := time.Unix(0, int64(st.LastWriteTS*float64(time.Second)))
	if g.now().Sub(lastWrite) < minInterval {
		return DecisionThrottled
	}
	return DecisionWrite
}

// Commit persists the new state after a successful write. A crash between
// the destination write and Commit costs at most one identical re-write on
// the next cycle.
func (g *Gate) Commit(report, newHash string) error {
	return g.states.Save(report, state.SyncState{
		Hash:        newHash,
		LastWriteTS: float64(g.now().UnixNano()) / float64(time.Second),
	})
}
