package query

import "github.com/noah-isme/donor-registry-api/internal/models"

// Session holds a caller's view state across refreshes. Changing a filter or the page size
// returns to the first page; refreshing the data alone keeps the current page.
type Session struct {
	engine *Engine
	filter models.DonorFilter
}

// NewSession starts a view on page 1 sorted by name ascending.
func (e *Engine) NewSession() *Session {
	return &Session{
		engine: e,
		filter: models.DonorFilter{
			Status:     models.StatusAll,
			BloodGroup: models.BloodGroupAll,
			SortBy:     SortByName,
			SortOrder:  SortAsc,
			Page:       1,
			PageSize:   e.defaultPageSize,
		},
	}
}

// Filter returns the current view parameters.
func (s *Session) Filter() models.DonorFilter {
	return s.filter
}

// SetSearch changes the free-text term.
func (s *Session) SetSearch(term string) {
	if term != s.filter.Search {
		s.filter.Search = term
		s.filter.Page = 1
	}
}

// SetStatus changes the status filter.
func (s *Session) SetStatus(status models.DonorStatusFilter) {
	if status != s.filter.Status {
		s.filter.Status = status
		s.filter.Page = 1
	}
}

// SetBloodGroup changes the blood group filter.
func (s *Session) SetBloodGroup(group string) {
	if group != s.filter.BloodGroup {
		s.filter.BloodGroup = group
		s.filter.Page = 1
	}
}

// SetPageSize changes the page size.
func (s *Session) SetPageSize(size int) {
	size = s.engine.PageSize(size)
	if size != s.filter.PageSize {
		s.filter.PageSize = size
		s.filter.Page = 1
	}
}

// SetSort changes the ordering without moving the page.
func (s *Session) SetSort(key, order string) {
	s.filter.SortBy = key
	s.filter.SortOrder = order
}

// GoTo moves to page.
func (s *Session) GoTo(page int) {
	s.filter.Page = page
}

// View renders the current page of donors. The stored page is clamped to the result so the
// session stays on a page that exists.
func (s *Session) View(donors []models.Donor, report *models.HealthReport) models.DonorPage {
	page := s.engine.Query(donors, s.filter, report)
	s.filter.Page = page.Pagination.Page
	return page
}
