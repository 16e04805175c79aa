package msx

// PageSlice is one page cut out of the full formatted item list.
type PageSlice struct {
	Items       []Item
	HasPrevious bool
	HasNext     bool
}

// Paginate slices items into page number page (1-based, clamped) of the
// given size. A start past the end yields an empty page, not an error. The
// upstream scrape is a bounded single-fetch snapshot, so slicing the full
// list per request is the whole pagination story; there is no incremental
// fetch-more.
func Paginate(items []Item, page, size int) PageSlice {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	start := (page - 1) * size
	end := start + size

	ps := PageSlice{
		HasPrevious: page > 1,
		HasNext:     end < len(items),
	}
	if start >= len(items) {
		ps.Items = []Item{}
		return ps
	}
	if end > len(items) {
		end = len(items)
	}
	ps.Items = items[start:end]
	return ps
}

// WithPageLinks surrounds a page with previous/next pseudo-cards whose
// actions re-enter the search endpoint with the page number adjusted.
func WithPageLinks(ps PageSlice, base, query string, page int, l Layout) []Item {
	items := make([]Item, 0, len(ps.Items)+2)
	if ps.HasPrevious {
		items = append(items, Item{
			Title:  "◀ Previous Page",
			Action: SearchContentAction(base, query, page-1, l),
			Style:  styleFor(l),
		})
	}
	items = append(items, ps.Items...)
	if ps.HasNext {
		items = append(items, Item{
			Title:  "Next Page ▶",
			Action: SearchContentAction(base, query, page+1, l),
			Style:  styleFor(l),
		})
	}
	return items
}
