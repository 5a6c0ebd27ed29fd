// Package pagination computes offset windows for list endpoints.
package pagination

// DefaultPageSize is used by every paginated list endpoint.
const DefaultPageSize = 20

// Window is the record range [Offset, Offset+Limit) of one page.
// A zero Limit means the page is out of range and nothing should be fetched.
type Window struct {
	Offset int
	Limit  int
	Pages  int
}

// Empty reports whether the window selects no records.
func (w Window) Empty() bool {
	return w.Limit == 0
}

// Paginate returns the window for zero-based pageIndex. Out-of-range indexes
// (negative or >= Pages) yield an empty window rather than an error.
func Paginate(total int64, pageIndex, pageSize int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var pages int
	if total > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	w := Window{Pages: pages}
	if pageIndex < 0 || pageIndex >= pages {
		return w
	}
	w.Offset = pageIndex * pageSize
	w.Limit = pageSize
	return w
}

// Page is one page of results together with the total page count.
type Page[T any] struct {
	Items []T
	Pages int
}
