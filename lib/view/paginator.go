package view

import "fmt"

// DefaultPageSize is the page size a new view starts with.
const DefaultPageSize = 20

// PageSizes are the page sizes offered to the user.
var PageSizes = []int{10, 20, 50, 100}

// TotalPages returns ceil(n/pageSize). An empty collection has no pages.
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Bounds returns the slice bounds [start, end) of a page.
func Bounds(n, pageSize, page int) (start, end int) {
	if pageSize <= 0 || page < 1 {
		return 0, 0
	}
	start = (page - 1) * pageSize
	if start > n {
		start = n
	}
	end = min(start+pageSize, n)
	return start, end
}

// Paginate returns the items of one page and the total number of pages.
// A page outside [1, totalPages] yields an empty page.
func Paginate[T any](items []T, pageSize, currentPage int) ([]T, int) {
	total := TotalPages(len(items), pageSize)
	if currentPage < 1 || currentPage > total {
		return []T{}, total
	}
	start, end := Bounds(len(items), pageSize, currentPage)
	return items[start:end], total
}

// --------------------------------------------------------------------------
// Pager (navigation state)
// --------------------------------------------------------------------------

// Pager is the navigation cursor over a collection of n items. It is not
// safe for concurrent use; the Coordinator guards its own pager.
type Pager struct {
	n    int
	size int
	page int
}

// NewPager returns a pager at page 1. A non positive size uses DefaultPageSize.
func NewPager(size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{size: size, page: 1}
}

// Reset replaces the collection size and returns to page 1.
func (p *Pager) Reset(n int) {
	p.n = max(n, 0)
	p.page = 1
}

// SetPageSize changes the page size and returns to page 1.
func (p *Pager) SetPageSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrPageSize, size)
	}
	p.size = size
	p.page = 1
	return nil
}

// GoTo moves to a page. Pages outside [1, TotalPages] are rejected and
// leave the pager unchanged.
func (p *Pager) GoTo(page int) error {
	if page < 1 || page > p.TotalPages() {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, p.TotalPages())
	}
	p.page = page
	return nil
}

func (p *Pager) Next() error { return p.GoTo(p.page + 1) }

func (p *Pager) Prev() error { return p.GoTo(p.page - 1) }

func (p *Pager) Page() int { return p.page }

func (p *Pager) PageSize() int { return p.size }

func (p *Pager) Len() int { return p.n }

func (p *Pager) TotalPages() int { return TotalPages(p.n, p.size) }

// Bounds returns the slice bounds of the current page.
func (p *Pager) Bounds() (start, end int) {
	if p.TotalPages() == 0 {
		return 0, 0
	}
	return Bounds(p.n, p.size, p.page)
}
