package pagination

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	// DefaultPageLimit is the page ceiling used by callers that do not pick one.
	DefaultPageLimit = 5

	// NoPageLimit makes Drain run until the cursor is exhausted.
	NoPageLimit = 0
)

// ErrNoHandler is returned when an iterator without a handler is asked to
// produce items of a type other than gjson.Result.
var ErrNoHandler = errors.New("pagination: no handler for item type")

// Getter issues a GET and returns the decoded-ready JSON body.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
}

// Handler maps one raw item of a page's data array to a domain value. It may
// perform further requests.
type Handler[T any] func(ctx context.Context, item gjson.Result) (T, error)

// Iterator walks a cursor-paginated endpoint one page at a time and keeps
// every fetched page.
//
// An Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	getter    Getter
	url       string
	pageSize  int
	sortOrder SortOrder
	handler   Handler[T]
	params    url.Values

	cursor         string
	nextCursor     string
	hasNext        bool
	previousCursor string
	finished       bool
	pageIndex      int

	pages []Page[T]
}

// New creates an iterator over rawURL. A nil handler is only valid when T is
// gjson.Result.
func New[T any](g Getter, rawURL string, pageSize int, handler Handler[T]) *Iterator[T] {
	return &Iterator[T]{
		getter:    g,
		url:       rawURL,
		pageSize:  pageSize,
		sortOrder: Ascending,
		handler:   handler,
		params:    url.Values{},
	}
}

// NewRaw creates an iterator that yields undecoded items.
func NewRaw(g Getter, rawURL string, pageSize int) *Iterator[gjson.Result] {
	return New[gjson.Result](g, rawURL, pageSize, nil)
}

// SortBy sets the sort order sent with every request.
func (it *Iterator[T]) SortBy(order SortOrder) *Iterator[T] {
	it.sortOrder = order
	return it
}

// With adds an extra query parameter merged into every page request. Extra
// parameters take precedence over cursor, limit and sortOrder.
func (it *Iterator[T]) With(key, value string) *Iterator[T] {
	it.params.Set(key, value)
	return it
}

// FetchCurrentPage requests the page at the current cursor, records the
// cursors returned with it, maps its items and appends it to the page cache.
// Calling it twice without Advance fetches the same position again.
func (it *Iterator[T]) FetchCurrentPage(ctx context.Context) (Page[T], error) {
	params := url.Values{}
	params.Set("cursor", it.cursor)
	params.Set("limit", strconv.Itoa(it.pageSize))
	params.Set("sortOrder", string(it.sortOrder))
	for key, values := range it.params {
		params[key] = append([]string(nil), values...)
	}

	body, err := it.getter.Get(ctx, it.url, params)
	if err != nil {
		return Page[T]{}, fmt.Errorf("fetch page %d of %s: %w", it.pageIndex, it.url, err)
	}

	doc := gjson.ParseBytes(body)
	it.nextCursor, it.hasNext = cursorAt(doc, "nextPageCursor")
	it.previousCursor, _ = cursorAt(doc, "previousPageCursor")

	raw := doc.Get("data").Array()
	items := make([]T, 0, len(raw))
	for i, item := range raw {
		v, err := it.mapItem(ctx, item)
		if err != nil {
			return Page[T]{}, fmt.Errorf("map item %d on page %d of %s: %w", i, it.pageIndex, it.url, err)
		}
		items = append(items, v)
	}

	page := Page[T]{Data: items}
	it.pages = append(it.pages, page)

	pagesFetched.Inc()
	itemsMapped.Add(float64(len(items)))
	log.Debug().
		Str("url", it.url).
		Int("page_index", it.pageIndex).
		Int("items", len(items)).
		Bool("has_next", it.hasNext).
		Msg("Fetched page")

	return page, nil
}

// Advance moves to the next cursor. When the last fetch returned no next
// cursor the iterator becomes finished and keeps its position.
func (it *Iterator[T]) Advance() {
	if !it.hasNext {
		it.finished = true
		return
	}

	it.previousCursor = it.cursor
	it.cursor = it.nextCursor
	it.nextCursor = ""
	it.hasNext = false
	it.pageIndex++
}

// Drain fetches and advances until the cursor is exhausted or pageLimit pages
// have been walked, and returns every page fetched so far. A pageLimit of
// NoPageLimit removes the ceiling.
func (it *Iterator[T]) Drain(ctx context.Context, pageLimit int) (PageSet[T], error) {
	for !it.finished && (pageLimit <= NoPageLimit || it.pageIndex < pageLimit) {
		if _, err := it.FetchCurrentPage(ctx); err != nil {
			return it.Pages(), err
		}
		it.Advance()
	}
	return it.Pages(), nil
}

// All yields every item of every remaining page. Iteration stops at the first
// error, which is yielded with the zero T.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for !it.finished {
			page, err := it.FetchCurrentPage(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			it.Advance()
			for _, item := range page.Data {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// Pages returns the pages fetched so far.
func (it *Iterator[T]) Pages() PageSet[T] {
	return PageSet[T]{Pages: append([]Page[T](nil), it.pages...)}
}

// Finished reports whether the last page has been reached.
func (it *Iterator[T]) Finished() bool { return it.finished }

// PageIndex is the number of times the iterator has advanced.
func (it *Iterator[T]) PageIndex() int { return it.pageIndex }

// Cursor returns the cursor of the current position.
func (it *Iterator[T]) Cursor() string { return it.cursor }

// NextCursor returns the next cursor, if the last fetch returned one.
func (it *Iterator[T]) NextCursor() (string, bool) { return it.nextCursor, it.hasNext }

// PreviousCursor returns the cursor before the current position.
func (it *Iterator[T]) PreviousCursor() string { return it.previousCursor }

// URL returns the endpoint the iterator walks.
func (it *Iterator[T]) URL() string { return it.url }

func (it *Iterator[T]) mapItem(ctx context.Context, item gjson.Result) (T, error) {
	if it.handler != nil {
		return it.handler(ctx, item)
	}
	if v, ok := any(item).(T); ok {
		return v, nil
	}
	var zero T
	return zero, ErrNoHandler
}

// cursorAt treats a missing, null or empty cursor as absent.
func cursorAt(doc gjson.Result, path string) (string, bool) {
	v := doc.Get(path)
	if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
		return "", false
	}
	return v.String(), true
}
