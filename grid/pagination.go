package grid

// DefaultPageSize is the number of cards per page.
const DefaultPageSize = 6

// PageLink is one entry of the pagination control. Ellipsis entries carry
// no page number and are not clickable.
type PageLink struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// TotalPages is ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// PageLinks lays out first, last and the pages within window of current.
// Each page number appears once; any skipped range becomes one ellipsis.
func PageLinks(current, total, window int) []PageLink {
	if total < 1 {
		total = 1
	}
	current = clamp(current, 1, total)
	if window < 0 {
		window = 0
	}

	lo := max(current-window, 1)
	hi := min(current+window, total)

	pages := make([]int, 0, hi-lo+3)
	if lo > 1 {
		pages = append(pages, 1)
	}
	for p := lo; p <= hi; p++ {
		pages = append(pages, p)
	}
	if hi < total {
		pages = append(pages, total)
	}

	links := make([]PageLink, 0, len(pages)+2)
	prev := 0
	for _, p := range pages {
		if prev != 0 && p-prev > 1 {
			links = append(links, PageLink{Ellipsis: true})
		}
		links = append(links, PageLink{Number: p, Current: p == current})
		prev = p
	}
	return links
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
