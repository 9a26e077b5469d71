// Package pagination drives cursor-based pagination against platform list
// endpoints.
//
// Every list endpoint accepts cursor, limit and sortOrder query parameters and
// answers with a body of the form:
//
//	{"data": [...], "nextPageCursor": "abc", "previousPageCursor": null}
//
// The next cursor is only known once the previous page has been decoded, so
// pages are always fetched strictly one after another.
//
// Example usage:
//
//	it := pagination.New(client, url, 25, pagination.WithHandler(toBadge))
//	pages, err := it.Drain(ctx, pagination.DefaultPageLimit)
//	for _, badge := range pages.Items() {
//		fmt.Println(badge.Name)
//	}
//
// Drain is bounded by its page limit. Callers that need a full traversal pass
// NoPageLimit or range over Items.
//
// The iterator does not deduplicate. When the backend hands out overlapping
// cursors (e.g. because the list changed between requests) duplicate items are
// returned as received.
package pagination
