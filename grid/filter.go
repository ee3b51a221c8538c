package grid

import (
	"sort"
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// AllCategory selects every item. Any value starting with AllPrefix does too.
const (
	AllCategory = "All"
	AllPrefix   = "All-"
)

// IsAll reports whether category means "no filter".
func IsAll(category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || category == AllCategory || strings.HasPrefix(category, AllPrefix)
}

// FilterEnabled reports whether the category facet applies to ct. Press
// releases are always shown in full.
func FilterEnabled(ct models.ContentType) bool {
	return ct == models.ContentBlog
}

// Filter returns the items of ct that belong to category, as a new slice.
// items is never modified.
func Filter(items []models.ContentItem, ct models.ContentType, category string) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(items))
	if !FilterEnabled(ct) || IsAll(category) {
		return append(out, items...)
	}
	category = strings.TrimSpace(category)
	for _, it := range items {
		if inCategory(it, category) {
			out = append(out, it)
		}
	}
	return out
}

func inCategory(it models.ContentItem, category string) bool {
	for _, c := range it.Categories {
		if c == category {
			return true
		}
	}
	return len(it.Categories) == 0 && it.Category == category
}

// SortNewest returns a copy of items ordered by PublishedAt, newest first.
// Ties keep their input order.
func SortNewest(items []models.ContentItem) []models.ContentItem {
	out := make([]models.ContentItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}
