package batch

import (
	"context"
)

// Result is the partial-failure outcome of a sequential batch.
// Completed counts items processed successfully before Err stopped the
// run; Total is the number of items the run was asked to process.
type Result struct {
	Completed int
	Total     int
	Err       error
}

// Failed reports whether the run stopped before processing every item.
func (r Result) Failed() bool {
	return r.Err != nil
}

// RunSequential calls fn for each item in order, one at a time, and
// stops at the first error. Context cancellation is checked before each
// item. The returned Result always has Total == len(items).
func RunSequential[T any](ctx context.Context, items []T, fn func(context.Context, T) error) Result {
	res := Result{Total: len(items)}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		if err := fn(ctx, item); err != nil {
			res.Err = err
			return res
		}
		res.Completed++
	}

	return res
}
