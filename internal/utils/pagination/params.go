package pagination

const (
	// DefaultPageSize is applied when the caller omits page_size or supplies
	// a non-positive value.
	DefaultPageSize = 20
	// MaxPageSize caps page_size; larger requests are clamped, not rejected.
	MaxPageSize = 100
)

// Normalize clamps page/page_size to their legal ranges: page >= 1,
// 0 < page_size <= MaxPageSize with DefaultPageSize as the fallback.
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// Offset converts normalized page/page_size into a zero-based offset.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// SliceBounds returns the [start, end) window into a collection of length
// total for the given normalized page, used by the in-memory store.
func SliceBounds(total, page, pageSize int) (int, int) {
	start := Offset(page, pageSize)
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
