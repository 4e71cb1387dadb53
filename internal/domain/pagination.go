package domain

// MaxPage bounds requested page numbers so offsets stay well inside int range
const MaxPage = 1 << 20

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Results    []T   `json:"results"`
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Next       *int  `json:"next"`
	Previous   *int  `json:"previous"`
}

// NewPaginatedResult fills page links from count and page size
func NewPaginatedResult[T any](items []T, count int64, page, pageSize int) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((count + int64(pageSize) - 1) / int64(pageSize))
	}
	res := &PaginatedResult[T]{
		Results:    items,
		Count:      count,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
	if page < totalPages {
		next := page + 1
		res.Next = &next
	}
	if page > 1 {
		prev := page - 1
		if prev > totalPages && totalPages > 0 {
			prev = totalPages
		}
		res.Previous = &prev
	}
	return res
}
