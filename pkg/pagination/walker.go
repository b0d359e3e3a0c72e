package pagination

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Page is one resolved page of a collection.
type Page[T any] struct {
	// Items on the page, in source order
	Items []T

	// TotalPages reported by the source. Ignored unless Fresh.
	TotalPages int

	// Fresh is true when the page came from the source rather than a cache
	Fresh bool
}

// FetchFunc resolves a single 1-based page.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// Collect walks pages starting at 1 and returns their items concatenated in
// page order. On any error it returns nil and the error.
func Collect[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var items []T

	currentPage := 1
	totalPages := 1

	for currentPage <= totalPages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("page %d: %w", currentPage, err)
		}

		page, err := fetch(ctx, currentPage)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", currentPage, err)
		}

		if page.Fresh {
			totalPages = page.TotalPages
			if totalPages <= 0 {
				totalPages = 1
			}
		}

		if len(page.Items) == 0 {
			log.Debug().
				Int("page", currentPage).
				Int("total_pages", totalPages).
				Msg("Empty page, stopping walk")
			break
		}

		items = append(items, page.Items...)
		currentPage++
	}

	return items, nil
}
