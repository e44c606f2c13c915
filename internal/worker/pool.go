// Package worker fans claim-detail fetches out across a bounded pool of
// goroutines. Used by export, where one list call is followed by a
// detail read per claim.
package worker

import (
	"context"
	"sync"

	"github.com/claimhub/claimctl/internal/model"
)

// DetailFetcher reads a single claim by ID
type DetailFetcher interface {
	Get(ctx context.Context, id string) (model.RawClaim, error)
}

// FetchResult pairs a claim ID with its fetched record or error
type FetchResult struct {
	ID    string
	Claim model.RawClaim
	Err   error
}

// Pool fetches claim details concurrently
type Pool struct {
	workers int
}

// NewPool creates a pool with the given concurrency
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// FetchAll retrieves every listed claim through the fetcher. Results come
// back in input order; per-claim failures are recorded, not fatal, so one
// bad record does not sink an export.
func (p *Pool) FetchAll(ctx context.Context, fetcher DetailFetcher, ids []string) []FetchResult {
	results := make([]FetchResult, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				claim, err := fetcher.Get(ctx, ids[i])
				results[i] = FetchResult{ID: ids[i], Claim: claim, Err: err}
			}
		}()
	}

	for i := range ids {
		select {
		case <-ctx.Done():
			// Mark the rest cancelled rather than blocking
			for j := i; j < len(ids); j++ {
				results[j] = FetchResult{ID: ids[j], Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
