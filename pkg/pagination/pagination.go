// Package pagination implements the windowed-result contract shared by every
// list endpoint: fixed page size, 1-indexed pages, and `{data, meta}` payloads.
package pagination

// DefaultPageSize is the fixed window size for all list endpoints
const DefaultPageSize = 10

// Meta describes a windowed result set
type Meta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	LastPage int `json:"last_page"`
}

// Page is a single window of results plus its metadata
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// New builds a Page from one window of data and the filtered total
func New[T any](data []T, total, page, size int) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Meta: Meta{
			Total:    total,
			Page:     page,
			LastPage: LastPage(total, size),
		},
	}
}

// Clamp normalizes a requested page number; anything below 1 becomes 1
func Clamp(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Offset returns the number of rows to skip for a 1-indexed page
func Offset(page, size int) int {
	return (Clamp(page) - 1) * size
}

// LastPage returns ceil(total/size), with a minimum of 1 so an empty
// collection still reports one (empty) page
func LastPage(total, size int) int {
	if total <= 0 {
		return 1
	}
	last := total / size
	if total%size != 0 {
		last++
	}
	return last
}
