package gitlab

import (
	"context"
	"fmt"
)

// pageFunc fetches one page of results. Pages start at 1.
type pageFunc[T any] func(ctx context.Context, page int) ([]T, error)

type pageOptions[T any] struct {
	// Limit caps the number of collected items. Zero means no cap.
	Limit int
	// Keep filters items before they are collected. Nil keeps everything.
	Keep func(T) bool
}

// fetchAll requests pages until one comes back empty or the limit is reached.
// The first failing page aborts the whole fetch; earlier pages are discarded.
func fetchAll[T any](ctx context.Context, fetch pageFunc[T], opts pageOptions[T]) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stopped before page %d: %w", page, err)
		}

		items, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		if len(items) == 0 {
			return all, nil
		}

		for _, item := range items {
			if opts.Keep != nil && !opts.Keep(item) {
				continue
			}

			all = append(all, item)

			if opts.Limit > 0 && len(all) >= opts.Limit {
				return all, nil
			}
		}
	}
}
