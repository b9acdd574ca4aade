package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BatchResult pairs a document with its outcome. Result is nil when the
// document was never started.
type BatchResult struct {
	Document Document
	Result   *Result
	Err      error
}

// ProcessAll processes docs with at most DocumentWorkers documents in flight.
// Each document keeps its own region worker bound. Results are returned in
// input order. After cancellation no further document is started.
func (p *Pipeline) ProcessAll(ctx context.Context, docs []Document) []BatchResult {
	results := make([]BatchResult, len(docs))
	sem := semaphore.NewWeighted(int64(p.cfg.DocumentWorkers))

	var wg sync.WaitGroup
	for i, doc := range docs {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(docs); j++ {
				results[j] = BatchResult{
					Document: docs[j],
					Err:      fmt.Errorf("document %q not started: %w", docs[j].Name, err),
				}
			}
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			res, err := p.Process(ctx, doc)
			results[i] = BatchResult{Document: doc, Result: res, Err: err}
		}()
	}
	wg.Wait()

	for i := range results {
		// the payload is not needed once processed
		results[i].Document.Data = nil
	}
	return results
}
