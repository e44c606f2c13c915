package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claimhub/claimctl/internal/model"
)

type fakeFetcher struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
	failIDs  map[string]bool
}

func (f *fakeFetcher) Get(ctx context.Context, id string) (model.RawClaim, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failIDs[id] {
		return nil, fmt.Errorf("claim %s unavailable", id)
	}
	return model.RawClaim{"id": id}, nil
}

func TestPool_OrderPreserved(t *testing.T) {
	ids := []string{"3", "1", "4", "1", "5", "9", "2", "6"}
	pool := NewPool(4)

	results := pool.FetchAll(context.Background(), &fakeFetcher{}, ids)
	if len(results) != len(ids) {
		t.Fatalf("Expected %d results, got %d", len(ids), len(results))
	}
	for i, res := range results {
		if res.ID != ids[i] {
			t.Errorf("results[%d].ID = %s, want %s", i, res.ID, ids[i])
		}
		if res.Err != nil {
			t.Errorf("results[%d] unexpected error: %v", i, res.Err)
		}
		if res.Claim["id"] != ids[i] {
			t.Errorf("results[%d].Claim = %v", i, res.Claim)
		}
	}
}

func TestPool_PartialFailures(t *testing.T) {
	fetcher := &fakeFetcher{failIDs: map[string]bool{"2": true}}
	pool := NewPool(2)

	results := pool.FetchAll(context.Background(), fetcher, []string{"1", "2", "3"})
	if results[0].Err != nil || results[2].Err != nil {
		t.Error("Healthy claims must not fail")
	}
	if results[1].Err == nil {
		t.Error("Expected error for claim 2")
	}
}

func TestPool_ConcurrencyBounded(t *testing.T) {
	fetcher := &fakeFetcher{delay: 20 * time.Millisecond}
	pool := NewPool(3)

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	pool.FetchAll(context.Background(), fetcher, ids)

	if peak := fetcher.peak.Load(); peak > 3 {
		t.Errorf("Peak concurrency = %d, want <= 3", peak)
	}
}

func TestPool_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2)
	results := pool.FetchAll(ctx, &fakeFetcher{delay: time.Second}, []string{"1", "2", "3", "4"})

	cancelled := 0
	for _, res := range results {
		if res.Err != nil {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Error("Expected cancelled fetches to carry errors")
	}
}
