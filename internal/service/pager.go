package service

import (
	"context"
	"fmt"
)

// itemPageSize is how many items are requested per /items page
const itemPageSize = 50

// pageFunc fetches one page starting at offset and reports the server's total
type pageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, int, error)

// collectPages requests pages until the reported total is reached or the
// server returns a short page. onProgress may be nil.
func collectPages[T any](ctx context.Context, limit int, next pageFunc[T], onProgress func(loaded, total int)) ([]T, error) {
	if limit <= 0 {
		limit = itemPageSize
	}

	var out []T
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, total, err := next(ctx, len(out), limit)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", len(out), err)
		}
		if out == nil {
			out = make([]T, 0, max(total, len(page)))
		}
		out = append(out, page...)

		if onProgress != nil {
			onProgress(len(out), max(total, len(out)))
		}
		if len(page) < limit || len(out) >= total {
			return out, nil
		}
	}
}
