// Package pagination drains paged listing endpoints that expose only
// limit/offset parameters, with no "has more" signal.
package pagination

import (
	"context"
	"fmt"
)

// PageFunc fetches one page of results at the given offset.
type PageFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// DrainAll collects every item behind a paged endpoint into one ordered
// slice. Each request overfetches by one (limit = pageSize+1): receiving more
// than pageSize items proves another page exists, so the extra item is
// dropped and the offset advances; receiving pageSize or fewer means this was
// the last page. The endpoint is never asked to confirm an empty tail page.
func DrainAll[T any](ctx context.Context, pageSize int, fetch PageFunc[T]) ([]T, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	var items []T
	offset := 0
	for {
		page, err := fetch(ctx, pageSize+1, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page at offset %d: %w", offset, err)
		}

		if len(page) <= pageSize {
			return append(items, page...), nil
		}

		items = append(items, page[:pageSize]...)
		offset += pageSize
	}
}
