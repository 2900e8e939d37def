// Package bulk applies one remote operation per item with bounded
// concurrency and reports a partial-success summary.
package bulk

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Summary is the outcome of a bulk run. Items that succeeded stay applied
// even when others fail.
type Summary struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ItemError ties a failure to the zero-based index of its item.
type ItemError struct {
	Index int
	Err   error
}

// Label formats item i for error messages, e.g. "row 3".
type Label func(i int) string

func RowLabel(i int) string { return fmt.Sprintf("row %d", i+1) }

// Run calls fn for every i in [0, n) with at most limit calls in flight.
// A failing item never aborts the others. Once ctx is done no new items are
// started; those count as failed with the context error. Errors are listed
// in index order.
func Run(ctx context.Context, n, limit int, label Label, fn func(ctx context.Context, i int) error) Summary {
	if limit < 1 {
		limit = 1
	}
	if label == nil {
		label = RowLabel
	}

	var (
		mu     sync.Mutex
		failed []ItemError
		ok     int
	)

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			failed = append(failed, ItemError{Index: i, Err: err})
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = fn(ctx, i)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, ItemError{Index: i, Err: err})
			} else {
				ok++
			}
			return nil
		})
	}
	_ = g.Wait()

	return summarize(ok, failed, label)
}

// Summarize builds a Summary from pre-computed outcomes.
func Summarize(success int, failed []ItemError, label Label) Summary {
	if label == nil {
		label = RowLabel
	}
	return summarize(success, failed, label)
}

func summarize(ok int, failed []ItemError, label Label) Summary {
	sortByIndex(failed)

	s := Summary{Success: ok, Failed: len(failed), Errors: make([]string, 0, len(failed))}
	for _, f := range failed {
		s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", label(f.Index), f.Err))
	}
	return s
}

func sortByIndex(errs []ItemError) {
	slices.SortStableFunc(errs, func(a, b ItemError) int {
		return cmp.Compare(a.Index, b.Index)
	})
}
