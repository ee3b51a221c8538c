package grid

import (
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options configures a Grid. Zero values fall back to defaults.
type Options struct {
	PageSize int
	Window   int
	// Categories is the ordered blog facet list. When empty the facets are
	// taken from the items themselves.
	Categories []string
}

// Page is one consistent snapshot of the grid.
type Page struct {
	Items         []models.ContentItem `json:"items"`
	CurrentPage   int                  `json:"currentPage"`
	TotalPages    int                  `json:"totalPages"`
	TotalItems    int                  `json:"totalItems"`
	Category      string               `json:"category"`
	ContentType   models.ContentType   `json:"contentType"`
	FilterEnabled bool                 `json:"filterEnabled"`
	Links         []PageLink           `json:"links"`
	HasPrev       bool                 `json:"hasPrev"`
	HasNext       bool                 `json:"hasNext"`
}

// Facet is one entry of the category control.
type Facet struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Grid holds the filter and page state of a single page view. It is not
// safe for concurrent use; build one per request.
type Grid struct {
	opts        Options
	items       []models.ContentItem
	contentType models.ContentType
	category    string
	filtered    []models.ContentItem
	totalPages  int
	page        int
}

// New sorts a copy of items newest first and shows page 1 of all items.
func New(items []models.ContentItem, ct models.ContentType, opts Options) *Grid {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Window < 0 {
		opts.Window = 0
	}
	g := &Grid{
		opts:        opts,
		items:       SortNewest(items),
		contentType: ct,
		category:    AllCategory,
	}
	g.refilter()
	return g
}

// SetCategory recomputes the filtered set, then the page count, then
// returns to page 1. The grid is never observable in between.
func (g *Grid) SetCategory(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = AllCategory
	}
	g.category = category
	g.refilter()
}

// SetContentType switches the rule set without refetching.
func (g *Grid) SetContentType(ct models.ContentType) {
	g.contentType = ct
	g.refilter()
}

// SetPage moves to page n, clamped to [1, TotalPages].
func (g *Grid) SetPage(n int) {
	g.page = clamp(n, 1, g.totalPages)
}

func (g *Grid) refilter() {
	g.filtered = Filter(g.items, g.contentType, g.category)
	g.totalPages = TotalPages(len(g.filtered), g.opts.PageSize)
	g.page = 1
}

// View returns the current page. The returned slice is a copy.
func (g *Grid) View() Page {
	start := (g.page - 1) * g.opts.PageSize
	end := min(start+g.opts.PageSize, len(g.filtered))
	var items []models.ContentItem
	if start < end {
		items = make([]models.ContentItem, end-start)
		copy(items, g.filtered[start:end])
	}
	return Page{
		Items:         items,
		CurrentPage:   g.page,
		TotalPages:    g.totalPages,
		TotalItems:    len(g.filtered),
		Category:      g.category,
		ContentType:   g.contentType,
		FilterEnabled: FilterEnabled(g.contentType),
		Links:         PageLinks(g.page, g.totalPages, g.opts.Window),
		HasPrev:       g.page > 1,
		HasNext:       g.page < g.totalPages,
	}
}

// Categories lists the facets for the category control, "All" first. It
// is empty when filtering does not apply to the content type.
func (g *Grid) Categories() []Facet {
	if !FilterEnabled(g.contentType) {
		return nil
	}
	values := g.opts.Categories
	if len(values) == 0 {
		values = itemCategories(g.items)
	}

	title := cases.Title(language.English, cases.NoLower)
	facets := []Facet{{Value: AllCategory, Label: AllCategory, Active: IsAll(g.category)}}
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || IsAll(v) || seen[v] {
			continue
		}
		seen[v] = true
		facets = append(facets, Facet{Value: v, Label: title.String(v), Active: v == g.category})
	}
	return facets
}

func itemCategories(items []models.ContentItem) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Categories...)
		if len(it.Categories) == 0 && it.Category != "" {
			out = append(out, it.Category)
		}
	}
	return out
}
