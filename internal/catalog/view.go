package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultItemsPerPage is the initial page size of the table.
	DefaultItemsPerPage = 10
	// AllCategories is the dropdown value meaning "no category filter".
	AllCategories       = "all"
	maxVisiblePages     = 5
)

// ItemsPerPageOptions are the page sizes the table offers.
var ItemsPerPageOptions = []int{5, 10, 20, 50}

// ErrInvalidItemsPerPage is returned for page sizes outside ItemsPerPageOptions.
var ErrInvalidItemsPerPage = errors.New("catalog: unsupported items per page")

// PageItem is one slot of the compact page list: either a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
}

// MarshalJSON renders page numbers as numbers and gaps as "ellipsis".
func (p PageItem) MarshalJSON() ([]byte, error) {
	if p.Ellipsis {
		return []byte(`"ellipsis"`), nil
	}
	return json.Marshal(p.Page)
}

func (p PageItem) String() string {
	if p.Ellipsis {
		return "ellipsis"
	}
	return fmt.Sprint(p.Page)
}

// Summary backs the "Showing X to Y of Z" line under the table.
type Summary struct {
	From          int  `json:"from"`
	To            int  `json:"to"`
	Filtered      int  `json:"filtered"`
	Total         int  `json:"total"`
	FiltersActive bool `json:"filtersActive"`
}

// View is the table state over one snapshot: search query, category filter, page size and
// current page. It is not safe for concurrent use.
type View struct {
	products     []Product
	query        string
	category     string
	itemsPerPage int
	currentPage  int
	filtered     []Product
}

// NewView starts a view over products with no filters on page 1.
func NewView(products []Product) *View {
	v := &View{
		products:     products,
		itemsPerPage: DefaultItemsPerPage,
		currentPage:  1,
	}
	v.refresh()
	return v
}

// SetQuery changes the search text and returns to page 1.
func (v *View) SetQuery(query string) {
	v.query = query
	v.currentPage = 1
	v.refresh()
}

// SetCategory changes the category filter and returns to page 1. The "all" option clears it.
func (v *View) SetCategory(category string) {
	if category == AllCategories {
		category = ""
	}
	v.category = category
	v.currentPage = 1
	v.refresh()
}

// SetItemsPerPage changes the page size and returns to page 1.
func (v *View) SetItemsPerPage(n int) error {
	if !ValidItemsPerPage(n) {
		return fmt.Errorf("%w: %d", ErrInvalidItemsPerPage, n)
	}
	v.itemsPerPage = n
	v.currentPage = 1
	v.refresh()
	return nil
}

// SetPage moves to page; nothing else changes. Pages past the end fall back to 1.
func (v *View) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	v.currentPage = page
	v.refresh()
}

// ClearFilters drops the query and category and returns to page 1.
func (v *View) ClearFilters() {
	v.query = ""
	v.category = ""
	v.currentPage = 1
	v.refresh()
}

func (v *View) Query() string {
	return v.query
}

func (v *View) Category() string {
	return v.category
}

func (v *View) ItemsPerPage() int {
	return v.itemsPerPage
}

func (v *View) CurrentPage() int {
	return v.currentPage
}

// Filtered returns every product passing the current filters.
func (v *View) Filtered() []Product {
	return v.filtered
}

// TotalPages is ceil(filtered / itemsPerPage).
func (v *View) TotalPages() int {
	return (len(v.filtered) + v.itemsPerPage - 1) / v.itemsPerPage
}

// Rows returns the products shown on the current page.
func (v *View) Rows() []Product {
	start, end := v.bounds()
	return v.filtered[start:end]
}

// PageWindow returns at most five page numbers plus ellipsis markers around the current page.
func (v *View) PageWindow() []PageItem {
	return PageWindow(v.TotalPages(), v.currentPage)
}

// Summary describes the visible range.
func (v *View) Summary() Summary {
	start, end := v.bounds()
	from := 0
	if end > start {
		from = start + 1
	}
	return Summary{
		From:          from,
		To:            end,
		Filtered:      len(v.filtered),
		Total:         len(v.products),
		FiltersActive: v.query != "" || v.category != "",
	}
}

func (v *View) bounds() (int, int) {
	start := (v.currentPage - 1) * v.itemsPerPage
	if start > len(v.filtered) {
		start = len(v.filtered)
	}
	end := start + v.itemsPerPage
	if end > len(v.filtered) {
		end = len(v.filtered)
	}
	return start, end
}

func (v *View) refresh() {
	v.filtered = Filter(v.products, v.query, v.category)
	if v.currentPage > v.TotalPages() {
		v.currentPage = 1
	}
}

// Filter keeps products matching query (case-insensitive substring of title, description or
// brand) and category (exact). Empty values match everything.
func Filter(products []Product, query, category string) []Product {
	needle := strings.ToLower(query)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!strings.Contains(strings.ToLower(p.Brand), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PageWindow builds the compact page list for totalPages pages with current selected.
func PageWindow(totalPages, current int) []PageItem {
	pages := func(from, to int) []PageItem {
		items := make([]PageItem, 0, to-from+1)
		for i := from; i <= to; i++ {
			items = append(items, PageItem{Page: i})
		}
		return items
	}
	gap := PageItem{Ellipsis: true}

	switch {
	case totalPages <= maxVisiblePages:
		return pages(1, totalPages)
	case current <= 3:
		return append(pages(1, 4), gap, PageItem{Page: totalPages})
	case current >= totalPages-2:
		return append([]PageItem{{Page: 1}, gap}, pages(totalPages-3, totalPages)...)
	default:
		items := append([]PageItem{{Page: 1}, gap}, pages(current-1, current+1)...)
		return append(items, gap, PageItem{Page: totalPages})
	}
}

// ValidItemsPerPage reports whether n is one of ItemsPerPageOptions.
func ValidItemsPerPage(n int) bool {
	for _, option := range ItemsPerPageOptions {
		if n == option {
			return true
		}
	}
	return false
}
