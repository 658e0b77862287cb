package query

import "github.com/noah-isme/donor-registry-api/internal/models"

// PageWindow lists the page numbers to display. Up to seven pages are all shown. Beyond that
// the first and last pages are always present, the current page is shown with one neighbour
// on each side, and an ellipsis stands in for any gap.
func PageWindow(current, total int) []models.PageItem {
	if total <= 0 {
		return []models.PageItem{}
	}
	if total <= 7 {
		items := make([]models.PageItem, 0, total)
		for p := 1; p <= total; p++ {
			items = append(items, models.PageItem{Page: p})
		}
		return items
	}

	items := []models.PageItem{{Page: 1}}
	if current > 3 {
		items = append(items, models.PageItem{Ellipsis: true})
	}
	start := max(2, current-1)
	end := min(total-1, current+1)
	for p := start; p <= end; p++ {
		items = append(items, models.PageItem{Page: p})
	}
	if current < total-2 {
		items = append(items, models.PageItem{Ellipsis: true})
	}
	return append(items, models.PageItem{Page: total})
}
