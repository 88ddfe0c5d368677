// Package workpool provides bounded concurrent execution for the batch
// stages of the pipeline: per-chunk extraction and per-group summarization.
package workpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// DefaultWorkers is used when a pool is created with a non-positive size.
const DefaultWorkers = 8

// PanicError wraps a panic value recovered inside a worker.
type PanicError struct {
	Value      interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// recoverWithCallback converts a panic into a PanicError and hands it to
// the callback. Call with defer.
func recoverWithCallback(callback func(error)) {
	if r := recover(); r != nil {
		callback(&PanicError{Value: r, StackTrace: string(debug.Stack())})
	}
}

// Worker processes a single item.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// Pool runs a Worker over item slices with bounded concurrency. Results
// are returned in input order regardless of completion order, so callers
// that need reproducible downstream aggregation get it for free.
type Pool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
}

// New creates a pool with the given concurrency.
func New[T any, R any](numWorkers int, worker Worker[T, R]) *Pool[T, R] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	return &Pool[T, R]{numWorkers: numWorkers, worker: worker}
}

// Process runs the worker over all items and blocks until every worker has
// finished. results[i] and errs[i] correspond to items[i]. Panics in
// workers are recovered and surfaced as PanicError. When ctx is cancelled
// mid-run, every item that never reached a worker gets the context error
// instead of a silent zero result.
func (p *Pool[T, R]) Process(ctx context.Context, items []T) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	type indexed struct {
		item  T
		index int
	}

	itemsChan := make(chan indexed, len(items))
	for i, item := range items {
		itemsChan <- indexed{item: item, index: i}
	}
	close(itemsChan)

	results := make([]R, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup

	for i := 0; i < p.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case it, ok := <-itemsChan:
					if !ok {
						return
					}
					// A cancelled run must not leave items looking
					// successfully processed: unstarted items carry the
					// context error so FirstError reports the abort.
					if err := ctx.Err(); err != nil {
						errs[it.index] = err
						continue
					}
					func() {
						defer recoverWithCallback(func(err error) {
							errs[it.index] = err
						})
						results[it.index], errs[it.index] = p.worker(ctx, it.item)
					}()
				case <-ctx.Done():
					for it := range itemsChan {
						errs[it.index] = ctx.Err()
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	return results, errs
}

// FirstError returns the first non-nil error in errs, or nil.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
