package tabular

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flakyStore fails the first n GetValues calls with a retryable error.
type flakyStore struct {
	MemoryStore
	failures int
	calls    int
	fatal    bool
}

func (f *flakyStore) GetValues(ctx context.Context, storeID, rangeSpec string) ([][]string, error) {
	f.calls++
	if f.calls <= f.failures {
		if f.fatal {
			return nil, errors.New("permission denied")
		}
		return nil, &RetryableError{Err: errors.New("rate limited")}
	}
	return f.MemoryStore.GetValues(ctx, storeID, rangeSpec)
}

func testPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 1.0}
}

func TestWithRetry_RecoversFromTransientFailures(t *testing.T) {
	t.Parallel()

	f := &flakyStore{failures: 2}
	f.Seed("book", "Май", [][]any{{"x"}})

	s := WithRetry(f, testPolicy(), 0)
	rows, err := s.GetValues(context.Background(), "book", "Май")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if len(rows) != 1 || f.calls != 3 {
		t.Fatalf("rows=%v calls=%d", rows, f.calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	f := &flakyStore{failures: 10}
	s := WithRetry(f, testPolicy(), 0)

	_, err := s.GetValues(context.Background(), "book", "Май")
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if f.calls != 3 {
		t.Fatalf("calls = %d, want exactly MaxAttempts", f.calls)
	}
}

func TestWithRetry_FatalErrorsPassThrough(t *testing.T) {
	t.Parallel()

	f := &flakyStore{failures: 10, fatal: true}
	s := WithRetry(f, testPolicy(), 0)

	_, err := s.GetValues(context.Background(), "book", "Май")
	if err == nil {
		t.Fatalf("expected error")
	}
	if f.calls != 1 {
		t.Fatalf("fatal error was retried: calls = %d", f.calls)
	}
}
