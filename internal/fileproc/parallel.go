// Package fileproc provides concurrent work-item processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing one item.
type ProcessingError struct {
	ID  string
	Err error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Err)
}

// ProcessingErrors collects multiple processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(id string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{ID: id, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d items failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. 2x absorbs scheduling gaps in mixed workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each item is processed.
type ProgressFunc func()

// Workers resolves a requested worker count, defaulting to 2x NumCPU.
func Workers(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// Map processes items in parallel with the default worker count. Results
// are collected in arbitrary order; failed items are skipped silently.
func Map[I, T any](items []I, key func(I) string, fn func(I) (T, error)) []T {
	results, _ := MapWithContext(context.Background(), items, 0,
		key, func(_ context.Context, item I) (T, error) { return fn(item) }, nil)
	return results
}

// MapWithContext processes items in parallel with bounded workers,
// cooperative cancellation, and an optional progress callback. Results
// completed before cancellation are returned; cancelled and failed items
// are reported through ProcessingErrors (nil when everything succeeded).
func MapWithContext[I, T any](
	ctx context.Context,
	items []I,
	maxWorkers int,
	key func(I) string,
	fn func(context.Context, I) (T, error),
	onProgress ProgressFunc,
) ([]T, *ProcessingErrors) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]T, 0, len(items))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers)).WithContext(ctx)
	for _, item := range items {
		p.Go(func(ctx context.Context) error {
			// Check for cancellation before processing
			select {
			case <-ctx.Done():
				errs.Add(key(item), ctx.Err())
				if onProgress != nil {
					onProgress()
				}
				return ctx.Err()
			default:
			}

			result, err := fn(ctx, item)

			if err != nil {
				errs.Add(key(item), err)
				if onProgress != nil {
					onProgress()
				}
				return nil // Don't stop the pool on individual item errors
			}

			if onProgress != nil {
				onProgress()
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
