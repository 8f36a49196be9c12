// Package worker fans discovery out across many files, one goroutine per
// file, bounded by a concurrency cap.
package worker

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Job is one unit of work: a file path paired with its position in the
// caller's input list.
type Job struct {
	Path  string
	Index int
}

// Result captures one job's outcome. Err is set when the job's Run call
// failed; Value holds the return payload otherwise.
type Result struct {
	Path  string
	Index int
	Value any
	Err   error
}

// Pool runs jobs concurrently with a bounded number of in-flight workers.
// Run is invoked once per job; a failing job's error is recorded on its
// Result rather than aborting the other workers, since one file's failure
// must not block discovery across the rest of a scan (the opposite of
// errgroup.Group's default first-error cancellation).
type Pool struct {
	Concurrency int
}

// New constructs a Pool with the given concurrency (clamped to at least 1).
func New(concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{Concurrency: concurrency}
}

// Run executes fn for every job, bounded by p.Concurrency in-flight calls,
// and returns results in job order. A context cancellation stops dispatch
// of further jobs but lets in-flight jobs finish.
func (p *Pool) Run(ctx context.Context, jobs []Job, fn func(ctx context.Context, j Job) (any, error)) []Result {
	results := make([]Result, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(p.Concurrency)

	for _, j := range jobs {
		j := j
		g.Go(func() error {
			select {
			case <-ctx.Done():
				mu.Lock()
				results[j.Index] = Result{Path: j.Path, Index: j.Index, Err: ctx.Err()}
				mu.Unlock()
				return nil
			default:
			}
			v, err := fn(gctx, j)
			mu.Lock()
			results[j.Index] = Result{Path: j.Path, Index: j.Index, Value: v, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })
	return results
}
