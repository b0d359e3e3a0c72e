// Package pagination walks 1-based paginated collections in page order.
//
// The source reports its page count on every fresh page. Pages served from a
// cache carry no count, so they never move the end of the walk.
//
// Example usage:
//
//	users, err := pagination.Collect(ctx, func(ctx context.Context, page int) (pagination.Page[User], error) {
//		return fetchPage(ctx, page)
//	})
//
// The walk:
//   - Starts at page 1 with one known page
//   - Stops at the first empty page without appending it
//   - Stops after the last known page
//   - Aborts on the first error or context cancellation, discarding
//     everything collected so far
package pagination
