package pagination

// SortOrder is the sortOrder query value sent with every page request.
type SortOrder string

const (
	Ascending  SortOrder = "Asc"
	Descending SortOrder = "Desc"
)

// Page is one fetched page of mapped items.
type Page[T any] struct {
	Data []T
}

// Count returns the number of items on the page.
func (p Page[T]) Count() int {
	return len(p.Data)
}

// PageSet is an ordered collection of pages in the order they were fetched.
type PageSet[T any] struct {
	Pages []Page[T]
}

// PageCount returns the number of pages.
func (s PageSet[T]) PageCount() int {
	return len(s.Pages)
}

// DataCount returns the number of items across all pages.
func (s PageSet[T]) DataCount() int {
	n := 0
	for _, p := range s.Pages {
		n += p.Count()
	}
	return n
}

// Items flattens all pages into one slice, preserving fetch order.
func (s PageSet[T]) Items() []T {
	out := make([]T, 0, s.DataCount())
	for _, p := range s.Pages {
		out = append(out, p.Data...)
	}
	return out
}
