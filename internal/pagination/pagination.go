// Package pagination slices in-memory lists into fixed size pages.
package pagination

// DefaultPageSize is the page size of the booking triage list.
const DefaultPageSize = 4

// Pager tracks the current page of a list of Total items. Page is 1-based
// and always within [1, max(1, TotalPages())].
type Pager struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// New returns a pager positioned on page, clamped to the valid range.
func New(total, pageSize, page int) Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	p := Pager{Page: 1, PageSize: pageSize, Total: total}
	p.Page = p.clamp(page)
	return p
}

// TotalPages is ceil(Total / PageSize).
func (p Pager) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p Pager) clamp(page int) int {
	last := p.TotalPages()
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Next moves forward one page; it does nothing on the last page.
func (p *Pager) Next() { p.Page = p.clamp(p.Page + 1) }

// Prev moves back one page; it does nothing on page 1.
func (p *Pager) Prev() { p.Page = p.clamp(p.Page - 1) }

func (p Pager) HasNext() bool { return p.Page < p.TotalPages() }
func (p Pager) HasPrev() bool { return p.Page > 1 }

// Bounds returns the half-open index range [start, end) of the current page.
func (p Pager) Bounds() (start, end int) {
	start = (p.Page - 1) * p.PageSize
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PageSize
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Slice returns items[(page-1)*size : page*size], clipped to the slice.
// Pages outside the list yield an empty slice.
func Slice[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Page is a convenience for Slice on the pager's current page.
func Page[T any](p Pager, items []T) []T {
	return Slice(items, p.Page, p.PageSize)
}
