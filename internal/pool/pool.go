// Package pool provides a generic bounded-concurrency task pool.
package pool

import (
	"context"
	"sync"
	"sync/atomic"
)

// ForEach processes every item with at most concurrency workers and returns
// one result per item, stored at the item's input index regardless of
// completion order.
//
// Concurrency is clamped to [1, len(items)]. Workers share an atomic cursor
// over the item list, so each index is claimed by exactly one worker. The
// worker is responsible for encoding its own failures into R; the pool does
// not interpret errors or panics.
func ForEach[T, R any](ctx context.Context, items []T, concurrency int, worker func(ctx context.Context, index int, item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	var (
		cursor int64 = -1
		wg     sync.WaitGroup
	)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for {
				i := int(atomic.AddInt64(&cursor, 1))
				if i >= len(items) {
					return
				}

				results[i] = worker(ctx, i, items[i])
			}
		}()
	}

	wg.Wait()

	return results
}
